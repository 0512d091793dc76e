package sqlinline

const QListActiveProviders = `--sql a4724929-201b-4460-b91c-d47d712c24fd
select id, name, model, content_types, price_per_unit, is_default, is_active, created_at
from providers
where is_active
order by id asc;
`

const QSelectProviderByID = `--sql ac7b8822-25a2-4618-a660-9776a501fa77
select id, name, model, content_types, price_per_unit, is_default, is_active, created_at
from providers
where id = $1::bigint
limit 1;
`

// Lowest id wins when more than one active provider is flagged default for
// the same content type.
const QSelectDefaultProvider = `--sql 386e207d-665c-4e31-88e7-9f9067f98c4c
select id, name, model, content_types, price_per_unit, is_default, is_active, created_at
from providers
where is_active and is_default and $1::text = any(content_types)
order by id asc
limit 1;
`
