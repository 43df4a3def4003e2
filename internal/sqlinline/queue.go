// Package sqlinline holds the inline SQL executed through infra.SQLRunner.
// Each statement starts with a `--sql <uuid>` marker so slow-query logs can be
// traced back to the exact statement; internal/tools/sqllint enforces the
// convention.
package sqlinline

const QEnqueueDesignJob = `--sql 7b1f6c02-9a4e-4f6b-8c0d-2e5a913f54d1
insert into design_queue (id, inputs_json, status)
values (gen_random_uuid(), $1::jsonb, 'QUEUED')
returning id;
`

const QClaimDesignJob = `--sql c3d1e0cb-feed-4a11-9b5c-8f27d40aa9e2
with next_job as (
    select id
    from design_queue
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update design_queue
    set status = 'RUNNING', updated_at = now()
    where id in (select id from next_job)
    returning id, inputs_json
)
select * from claimed;
`

const QFinishQueueItem = `--sql 5d9e3a77-1204-4c58-9f3e-b61cb8d02f43
update design_queue
set status = $2, job_id = $3, updated_at = now()
where id = $1;
`

const QRequeueStaleItems = `--sql 0aa4c9d8-66b1-4de2-8a17-39fd5c7e21b6
update design_queue
set status = 'QUEUED', updated_at = now()
where status = 'RUNNING' and updated_at < now() - interval '15 minutes';
`
