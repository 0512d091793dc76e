package sqlinline

const QInsertJob = `--sql ce1ba37b-d91b-4fde-a449-1e4ecfb91373
insert into jobs (id, user_id, content_type, prompt, source_content_id, provider_id, options_json, status, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::uuid, $6::bigint, coalesce($7::jsonb, '{}'::jsonb), 'pending', now(), now());
`

const QSelectJobByID = `--sql d11f74df-98d2-4b1b-a7d4-21c398b23716
select id, user_id, content_type, prompt, source_content_id, provider_id, options_json,
       status, error_message, content_id, created_at, started_at, completed_at
from jobs
where id = $1::uuid
limit 1;
`

// Claim of a specific job. The row lock is held only for this statement, so
// a long-running external call never blocks other claims. skip locked makes
// the losing side of a concurrent claim return zero rows instead of queuing.
const QClaimJobByID = `--sql fb52c21d-bc14-475b-a9a5-0521de383898
with target as (
    select id
    from jobs
    where id = $1::uuid and status = 'pending'
    for update skip locked
),
claimed as (
    update jobs
    set status = 'processing', started_at = now(), updated_at = now()
    where id in (select id from target)
    returning id, user_id, content_type, prompt, source_content_id, provider_id, options_json,
              status, created_at, started_at
)
select * from claimed;
`

const QClaimNextJob = `--sql 07ca44ea-41ed-49de-b5b7-1bdec0b085d5
with next_job as (
    select id
    from jobs
    where status = 'pending'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update jobs
    set status = 'processing', started_at = now(), updated_at = now()
    where id in (select id from next_job)
    returning id, user_id, content_type, prompt, source_content_id, provider_id, options_json,
              status, created_at, started_at
)
select * from claimed;
`

const QMarkJobCompleted = `--sql 1b146838-6489-453b-a8a8-dfed5a8d080a
update jobs
set status = 'completed', content_id = $2::uuid, completed_at = now(), updated_at = now()
where id = $1::uuid and status = 'processing';
`

const QMarkJobFailed = `--sql 6faf33f6-e736-4665-9f3b-0bf42e6038c3
update jobs
set status = 'failed', error_message = $2::text, completed_at = now(), updated_at = now()
where id = $1::uuid and status = 'processing';
`

const QReclaimStaleJobs = `--sql 6265e823-53a2-4ab3-bc11-691b4b4310b4
update jobs
set status = 'pending', started_at = null, updated_at = now()
where status = 'processing'
  and started_at < now() - ($1::int * interval '1 second')
returning id;
`
