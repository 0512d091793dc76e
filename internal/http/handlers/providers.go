package handlers

import (
	"net/http"
)

func (a *App) ProvidersList(w http.ResponseWriter, r *http.Request) {
	providers, err := a.Providers.ListActive(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("load providers failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load providers")
		return
	}
	items := make([]map[string]any, 0, len(providers))
	for _, p := range providers {
		items = append(items, map[string]any{
			"id":             p.ID,
			"name":           p.Name,
			"model":          p.Model,
			"content_types":  p.ContentTypes,
			"price_per_unit": p.PricePerUnit,
			"is_default":     p.IsDefault,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
