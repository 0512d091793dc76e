package sqlinline

const QInsertUsageEvent = `--sql ed53c5a8-8fea-4883-877a-a147db194e3c
insert into usage_events (id, user_id, job_id, event_type, success, latency_ms, created_at, properties)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::boolean, $5::int, now(), coalesce($6::jsonb, '{}'::jsonb));
`
