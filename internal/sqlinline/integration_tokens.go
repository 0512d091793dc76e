package sqlinline

const QSelectIntegrationToken = `--sql 5f31ea29-6dc4-44a6-bcf7-be03ea0329af
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 3a71185d-700e-41bf-9ff8-bed0a16717b1
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
