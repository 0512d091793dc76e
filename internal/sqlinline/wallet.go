package sqlinline

const QSelectWalletBalance = `--sql 327242a5-9444-4995-9115-4bbeb9256d57
select coalesce(
    (select balance from wallets where user_id = $1::uuid),
    0
);
`

// Debit is a single statement: the conditional decrement and the ledger
// insert either both happen or neither does, and balance >= amount is
// checked inside the row update, so concurrent debits cannot overdraw.
const QDebitWallet = `--sql a069d2e1-aa18-472b-9865-af4c822d7f9b
with debited as (
    update wallets
    set balance = balance - $2::int, updated_at = now()
    where user_id = $1::uuid and balance >= $2::int
    returning user_id, balance
)
insert into wallet_transactions (id, user_id, amount, description, balance_after, created_at)
select gen_random_uuid(), user_id, -$2::int, $3::text, balance, now()
from debited
returning id, user_id, amount, description, balance_after, created_at;
`

const QCreditWallet = `--sql 40ba8864-bc12-481f-8160-672b066bb179
with credited as (
    insert into wallets (user_id, balance, updated_at)
    values ($1::uuid, $2::int, now())
    on conflict (user_id) do update set
        balance = wallets.balance + excluded.balance,
        updated_at = now()
    returning user_id, balance
)
insert into wallet_transactions (id, user_id, amount, description, balance_after, created_at)
select gen_random_uuid(), user_id, $2::int, $3::text, balance, now()
from credited
returning id, user_id, amount, description, balance_after, created_at;
`

const QListWalletTransactions = `--sql 88eb552c-b4dc-4406-9e01-88d4a307d31b
select id, user_id, amount, description, balance_after, created_at
from wallet_transactions
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`
