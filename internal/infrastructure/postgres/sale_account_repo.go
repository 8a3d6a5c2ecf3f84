package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/events"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
	pgpkg "github.com/PremHer/kasvarealty-sub001/pkg/postgres"
)

// SaleAccountRepo implements port.SaleAccountRepository.
type SaleAccountRepo struct {
	pool        *pgxpool.Pool
	eventsTopic string
}

// NewSaleAccountRepo creates a PostgreSQL-backed repository. Domain events
// are queued in the outbox under eventsTopic.
func NewSaleAccountRepo(pool *pgxpool.Pool, eventsTopic string) *SaleAccountRepo {
	return &SaleAccountRepo{pool: pool, eventsTopic: eventsTopic}
}

// Save writes the account, its installments, new payments, new
// reprogramming records and pending events in one transaction. A version 0
// account is inserted; otherwise the stored version must match.
func (r *SaleAccountRepo) Save(ctx context.Context, account model.SaleAccount) error {
	return pgpkg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := saveHeader(ctx, tx, account); err != nil {
			return err
		}
		if err := saveInstallments(ctx, tx, account); err != nil {
			return err
		}
		for _, rec := range account.Reprogrammings() {
			if err := saveReprogramming(ctx, tx, rec); err != nil {
				return err
			}
		}
		return r.saveOutbox(ctx, tx, account)
	})
}

// FindByID retrieves an account with everything it owns.
func (r *SaleAccountRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (model.SaleAccount, error) {
	accounts, err := r.load(ctx, `WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return model.SaleAccount{}, err
	}
	if len(accounts) == 0 {
		return model.SaleAccount{}, fmt.Errorf("sale account %s: %w", id, model.ErrSaleAccountNotFound)
	}
	return accounts[0], nil
}

// FindActive lists the accounts that are not settled, oldest first.
func (r *SaleAccountRepo) FindActive(ctx context.Context, tenantID uuid.UUID) ([]model.SaleAccount, error) {
	if tenantID == uuid.Nil {
		return r.load(ctx, `WHERE status = $1`, string(valueobject.AccountActive))
	}
	return r.load(ctx, `WHERE status = $1 AND tenant_id = $2`, string(valueobject.AccountActive), tenantID)
}

// ---------------------------------------------------------------------------
// writes
// ---------------------------------------------------------------------------

func saveHeader(ctx context.Context, tx pgx.Tx, a model.SaleAccount) error {
	if a.Version() == 0 {
		const insertSQL = `
			INSERT INTO sale_accounts (
				id, tenant_id, property_kind, property_ref, customer_ref, currency,
				total_price, initial_payment, financed_balance,
				interest_rate, late_interest_rate, amortization_model, frequency, balloon_fraction,
				status, version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,1,$16,$17)
		`
		_, err := tx.Exec(ctx, insertSQL,
			a.ID(), a.TenantID(), a.Property().Kind().String(), a.Property().Ref(), a.CustomerRef(), a.Currency().Code(),
			a.TotalPrice(), a.InitialPayment(), a.FinancedBalance(),
			a.InterestRate(), a.LateInterestRate(), a.Model().String(), a.Frequency().String(), a.BalloonFraction(),
			string(a.Status()), a.CreatedAt(), a.UpdatedAt(),
		)
		if pgpkg.IsUniqueViolation(err) {
			return fmt.Errorf("insert sale account %s: %w", a.ID(), model.ErrConcurrentModification)
		}
		if err != nil {
			return fmt.Errorf("insert sale account: %w", err)
		}
		return nil
	}

	const updateSQL = `
		UPDATE sale_accounts SET
			interest_rate      = $3,
			amortization_model = $4,
			frequency          = $5,
			balloon_fraction   = $6,
			status             = $7,
			updated_at         = $8,
			version            = version + 1
		WHERE id = $1 AND version = $2
	`
	tag, err := tx.Exec(ctx, updateSQL,
		a.ID(), a.Version(),
		a.InterestRate(), a.Model().String(), a.Frequency().String(), a.BalloonFraction(),
		string(a.Status()), a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("update sale account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sale account %s at version %d: %w", a.ID(), a.Version(), model.ErrConcurrentModification)
	}
	return nil
}

func saveInstallments(ctx context.Context, tx pgx.Tx, a model.SaleAccount) error {
	const upsertSQL = `
		INSERT INTO installments (
			id, sale_account_id, number, due_date, amount, principal, interest,
			amount_paid, discounted, balance_before, balance_after, state
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			due_date       = EXCLUDED.due_date,
			amount         = EXCLUDED.amount,
			principal      = EXCLUDED.principal,
			interest       = EXCLUDED.interest,
			amount_paid    = EXCLUDED.amount_paid,
			discounted     = EXCLUDED.discounted,
			balance_before = EXCLUDED.balance_before,
			balance_after  = EXCLUDED.balance_after,
			state          = EXCLUDED.state
	`
	const paymentSQL = `
		INSERT INTO payments (
			id, sale_account_id, installment_id, amount, applied, late_interest,
			paid_on, method, note, receipt_ref, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, inst := range a.Installments() {
		batch.Queue(upsertSQL,
			inst.ID, a.ID(), inst.Number, inst.DueDate, inst.Amount, inst.Principal, inst.Interest,
			inst.AmountPaid, inst.Discounted, inst.BalanceBefore, inst.BalanceAfter, inst.State.String(),
		)
		for _, p := range inst.Payments {
			batch.Queue(paymentSQL,
				p.ID, a.ID(), inst.ID, p.Amount, p.Applied, p.LateInterest,
				p.Date, p.Method.String(), p.Note, p.ReceiptRef, p.RecordedAt,
			)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if pgpkg.IsUniqueViolation(err) {
			return fmt.Errorf("save payments of %s: %w", a.ID(), model.ErrDuplicatePayment)
		}
		return fmt.Errorf("save installments: %w", err)
	}
	return nil
}

// planChangeRecord is the JSONB form of model.PlanChange.
type planChangeRecord struct {
	Model           string              `json:"model,omitempty"`
	Rate            decimal.NullDecimal `json:"rate"`
	Frequency       string              `json:"frequency,omitempty"`
	FirstDueDate    *time.Time          `json:"first_due_date,omitempty"`
	BalloonFraction decimal.NullDecimal `json:"balloon_fraction"`
}

func encodePlanChange(pc *model.PlanChange) ([]byte, error) {
	if pc == nil {
		return nil, nil
	}
	rec := planChangeRecord{
		Model:           pc.Model.String(),
		Rate:            pc.Rate,
		FirstDueDate:    pc.FirstDueDate,
		BalloonFraction: pc.BalloonFraction,
	}
	if pc.Frequency != nil {
		rec.Frequency = pc.Frequency.String()
	}
	return json.Marshal(rec)
}

func decodePlanChange(raw []byte) (*model.PlanChange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rec planChangeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode plan change: %w", err)
	}
	pc := &model.PlanChange{
		Model:           valueobject.ParseAmortizationModel(rec.Model),
		Rate:            rec.Rate,
		FirstDueDate:    rec.FirstDueDate,
		BalloonFraction: rec.BalloonFraction,
	}
	if rec.Frequency != "" {
		f := valueobject.ParseFrequency(rec.Frequency)
		pc.Frequency = &f
	}
	return pc, nil
}

// saveReprogramming inserts rec once; records are append-only.
func saveReprogramming(ctx context.Context, tx pgx.Tx, rec model.Reprogramming) error {
	planChange, err := encodePlanChange(rec.PlanChange)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO reprogrammings (id, sale_account_id, reason, actor_id, plan_change, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.SaleAccountID, rec.Reason, rec.ActorID, planChange, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reprogramming: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for k, m := range rec.Modifications {
		batch.Queue(`
			INSERT INTO reprogramming_modifications (
				reprogramming_id, position, installment_id, number,
				previous_amount, new_amount, previous_due_date, new_due_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, rec.ID, k, m.InstallmentID, m.Number, m.PreviousAmount, m.NewAmount, m.PreviousDueDate, m.NewDueDate)
	}
	for k, d := range rec.Discounts {
		batch.Queue(`
			INSERT INTO reprogramming_discounts (reprogramming_id, position, installment_id, number, amount, reason)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, rec.ID, k, d.InstallmentID, d.Number, d.Amount, d.Reason)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert reprogramming details: %w", err)
	}
	return nil
}

func (r *SaleAccountRepo) saveOutbox(ctx context.Context, tx pgx.Tx, a model.SaleAccount) error {
	for _, evt := range a.DomainEvents() {
		entry, err := events.NewOutboxEntry(r.eventsTopic, evt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO outbox (id, aggregate_id, aggregate_type, tenant_id, event_type, topic, payload, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (id) DO NOTHING
		`, entry.ID, entry.AggregateID, entry.AggregateType, entry.TenantID,
			entry.EventType, entry.Topic, entry.Payload, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert outbox event %s: %w", entry.EventType, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

const selectAccountSQL = `
	SELECT id, tenant_id, property_kind, property_ref, customer_ref, currency,
	       total_price, initial_payment, financed_balance,
	       interest_rate, late_interest_rate, amortization_model, frequency, balloon_fraction,
	       version, created_at, updated_at
	FROM sale_accounts
`

// load reads the matching headers, then their children in one query per
// table.
func (r *SaleAccountRepo) load(ctx context.Context, where string, args ...any) ([]model.SaleAccount, error) {
	rows, err := r.pool.Query(ctx, selectAccountSQL+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query sale accounts: %w", err)
	}
	snapshots, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, fmt.Errorf("scan sale accounts: %w", err)
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(snapshots))
	byID := make(map[uuid.UUID]*model.SaleAccountSnapshot, len(snapshots))
	for k := range snapshots {
		ids[k] = snapshots[k].ID
		byID[snapshots[k].ID] = &snapshots[k]
	}
	if err := r.loadInstallments(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := r.loadReprogrammings(ctx, ids, byID); err != nil {
		return nil, err
	}

	out := make([]model.SaleAccount, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, model.ReconstructSaleAccount(s))
	}
	return out, nil
}

func scanAccount(row pgx.CollectableRow) (model.SaleAccountSnapshot, error) {
	var (
		s                       model.SaleAccountSnapshot
		kind, ref, currency     string
		amortization, frequency string
	)
	err := row.Scan(
		&s.ID, &s.TenantID, &kind, &ref, &s.CustomerRef, &currency,
		&s.TotalPrice, &s.InitialPayment, &s.FinancedBalance,
		&s.InterestRate, &s.LateInterestRate, &amortization, &frequency, &s.BalloonFraction,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	pk, err := valueobject.ParsePropertyKind(kind)
	if err != nil {
		return s, err
	}
	if s.Property, err = valueobject.NewProperty(pk, ref); err != nil {
		return s, err
	}
	if s.Currency, err = money.NewCurrency(currency); err != nil {
		return s, err
	}
	s.Model = valueobject.ParseAmortizationModel(amortization)
	s.Frequency = valueobject.ParseFrequency(frequency)
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return s, nil
}

// slot locates an installment inside its snapshot.
type slot struct {
	account uuid.UUID
	pos     int
}

func (r *SaleAccountRepo) loadInstallments(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*model.SaleAccountSnapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_account_id, number, due_date, amount, principal, interest,
		       amount_paid, discounted, balance_before, balance_after, state
		FROM installments
		WHERE sale_account_id = ANY($1)
		ORDER BY sale_account_id, number
	`, ids)
	if err != nil {
		return fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	index := make(map[uuid.UUID]slot)
	for rows.Next() {
		var (
			inst      model.Installment
			accountID uuid.UUID
			state     string
		)
		if err := rows.Scan(
			&inst.ID, &accountID, &inst.Number, &inst.DueDate, &inst.Amount, &inst.Principal, &inst.Interest,
			&inst.AmountPaid, &inst.Discounted, &inst.BalanceBefore, &inst.BalanceAfter, &state,
		); err != nil {
			return fmt.Errorf("scan installment: %w", err)
		}
		if inst.State, err = valueobject.NewInstallmentState(state); err != nil {
			return fmt.Errorf("installment %s: %w", inst.ID, err)
		}
		inst.DueDate = valueobject.Date(inst.DueDate)
		s := byID[accountID]
		index[inst.ID] = slot{account: accountID, pos: len(s.Installments)}
		s.Installments = append(s.Installments, inst)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate installments: %w", err)
	}

	prow, err := r.pool.Query(ctx, `
		SELECT id, installment_id, amount, applied, late_interest, paid_on, method, note, receipt_ref, recorded_at
		FROM payments
		WHERE sale_account_id = ANY($1)
		ORDER BY recorded_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query payments: %w", err)
	}
	defer prow.Close()

	for prow.Next() {
		var (
			p      model.Payment
			method string
		)
		if err := prow.Scan(
			&p.ID, &p.InstallmentID, &p.Amount, &p.Applied, &p.LateInterest,
			&p.Date, &method, &p.Note, &p.ReceiptRef, &p.RecordedAt,
		); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		if p.Method, err = valueobject.NewPaymentMethod(method); err != nil {
			return fmt.Errorf("payment %s: %w", p.ID, err)
		}
		p.Date, p.RecordedAt = valueobject.Date(p.Date), p.RecordedAt.UTC()
		at, ok := index[p.InstallmentID]
		if !ok {
			return fmt.Errorf("payment %s references unknown installment %s", p.ID, p.InstallmentID)
		}
		inst := &byID[at.account].Installments[at.pos]
		inst.Payments = append(inst.Payments, p)
	}
	if err := prow.Err(); err != nil {
		return fmt.Errorf("iterate payments: %w", err)
	}
	return nil
}

func (r *SaleAccountRepo) loadReprogrammings(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*model.SaleAccountSnapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_account_id, reason, actor_id, plan_change, created_at
		FROM reprogrammings
		WHERE sale_account_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query reprogrammings: %w", err)
	}
	defer rows.Close()

	records := make(map[uuid.UUID]*model.Reprogramming)
	var order []uuid.UUID
	for rows.Next() {
		var (
			rec        model.Reprogramming
			planChange []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SaleAccountID, &rec.Reason, &rec.ActorID, &planChange, &rec.CreatedAt); err != nil {
			return fmt.Errorf("scan reprogramming: %w", err)
		}
		if rec.PlanChange, err = decodePlanChange(planChange); err != nil {
			return err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		records[rec.ID] = &rec
		order = append(order, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate reprogrammings: %w", err)
	}
	if len(order) == 0 {
		return nil
	}

	if err := r.loadModifications(ctx, order, records); err != nil {
		return err
	}
	if err := r.loadDiscounts(ctx, order, records); err != nil {
		return err
	}
	for _, id := range order {
		rec := records[id]
		s := byID[rec.SaleAccountID]
		s.Reprogrammings = append(s.Reprogrammings, *rec)
	}
	return nil
}

func (r *SaleAccountRepo) loadModifications(ctx context.Context, ids []uuid.UUID, records map[uuid.UUID]*model.Reprogramming) error {
	rows, err := r.pool.Query(ctx, `
		SELECT reprogramming_id, installment_id, number, previous_amount, new_amount, previous_due_date, new_due_date
		FROM reprogramming_modifications
		WHERE reprogramming_id = ANY($1)
		ORDER BY reprogramming_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("query modifications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			recID uuid.UUID
			m     model.Modification
		)
		if err := rows.Scan(&recID, &m.InstallmentID, &m.Number, &m.PreviousAmount, &m.NewAmount, &m.PreviousDueDate, &m.NewDueDate); err != nil {
			return fmt.Errorf("scan modification: %w", err)
		}
		m.PreviousDueDate, m.NewDueDate = valueobject.Date(m.PreviousDueDate), valueobject.Date(m.NewDueDate)
		records[recID].Modifications = append(records[recID].Modifications, m)
	}
	return rows.Err()
}

func (r *SaleAccountRepo) loadDiscounts(ctx context.Context, ids []uuid.UUID, records map[uuid.UUID]*model.Reprogramming) error {
	rows, err := r.pool.Query(ctx, `
		SELECT reprogramming_id, installment_id, number, amount, reason
		FROM reprogramming_discounts
		WHERE reprogramming_id = ANY($1)
		ORDER BY reprogramming_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("query discounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			recID uuid.UUID
			d     model.Discount
		)
		if err := rows.Scan(&recID, &d.InstallmentID, &d.Number, &d.Amount, &d.Reason); err != nil {
			return fmt.Errorf("scan discount: %w", err)
		}
		records[recID].Discounts = append(records[recID].Discounts, d)
	}
	return rows.Err()
}
