package sqlinline

const QInsertContent = `--sql 8245ac55-5ab6-49cd-bfba-39be8d9c1eb6
insert into contents (id, user_id, job_id, source_content_id, content_type, prompt, result_json,
                      credits_charged, status, provider_name, provider_model, error_message, created_at)
values ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5::text, $6::text, coalesce($7::jsonb, '{}'::jsonb),
        $8::int, $9::text, $10::text, $11::text, $12::text, now());
`

const QSelectContentByID = `--sql 60ee19a4-8f4d-4829-9539-fb386afdae75
select id, user_id, job_id, source_content_id, content_type, prompt, result_json,
       credits_charged, status, provider_name, provider_model, error_message, created_at
from contents
where id = $1::uuid
limit 1;
`
