package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"custody/internal/core/apperror"
	"custody/internal/core/id"
	"custody/internal/core/numerator"
	"custody/internal/core/tx"
	"custody/internal/domain"
	"custody/pkg/logger"
)

// Input carries caller-supplied invoice fields for Create and Update.
// An empty Number asks for allocation on create and keeps the current number on update.
// An empty Type defaults to INVOICE on create and keeps the current type on update.
type Input struct {
	Number    string
	Type      DocumentType
	ClientID  id.ID
	ProjectID *id.ID

	IssueDate  *time.Time
	SupplyDate *time.Time
	DueDate    *time.Time

	Currency             string
	ExchangeRateProvider string
	ExchangeRateValue    decimal.NullDecimal

	PaymentTerms  string
	LateFeeRate   decimal.NullDecimal
	CollectionFee decimal.NullDecimal
	Notes         string
	LegalMentions []string

	Lines []Line
}

// applyTo copies the editable fields onto inv. Number, type and status are handled by the caller.
func (in Input) applyTo(inv *Invoice) {
	inv.ClientID = in.ClientID
	inv.ProjectID = in.ProjectID
	inv.IssueDate = in.IssueDate
	inv.SupplyDate = in.SupplyDate
	inv.DueDate = in.DueDate

	inv.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if inv.Currency == "" {
		inv.Currency = DefaultCurrency
	}
	inv.ExchangeRateProvider = in.ExchangeRateProvider
	inv.ExchangeRateValue = in.ExchangeRateValue

	inv.PaymentTerms = in.PaymentTerms
	inv.LateFeeRate = in.LateFeeRate
	inv.CollectionFee = in.CollectionFee
	inv.Notes = in.Notes
	inv.LegalMentions = append(make([]string, 0, len(in.LegalMentions)), in.LegalMentions...)

	inv.SetLines(in.Lines)
}

// transactional is implemented by allocators that can report whether a
// rolled-back transaction also returns the allocated value.
type transactional interface {
	Transactional() bool
}

// Service orchestrates the invoice lifecycle: numbering, totals and workflow.
// All methods are safe for concurrent use.
type Service struct {
	repo      Repository
	clients   ReferenceChecker
	projects  ReferenceChecker
	allocator numerator.Allocator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Invoice]
	now       func() time.Time
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	clients ReferenceChecker,
	projects ReferenceChecker,
	allocator numerator.Allocator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		projects:  projects,
		allocator: allocator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Invoice](),
		now:       time.Now,
	}
}

// WithClock overrides the time source (tests, batch imports).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Hooks returns the hook registry for registering callbacks.
// Hooks run after commit; their errors are logged and never undo the operation.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// Create validates, numbers, totals and persists a new draft invoice.
//
// Validation order: referenced client/project, then a supplied number's
// format followed by its uniqueness, then dates. A number is allocated only
// once every check has passed.
func (s *Service) Create(ctx context.Context, in Input) (*Invoice, error) {
	inv := NewInvoice(s.now())
	in.applyTo(inv)
	if in.Type != "" {
		inv.Type = in.Type
	}
	inv.Number = strings.TrimSpace(in.Number)

	if err := inv.validateFields(); err != nil {
		return nil, err
	}

	var allocated bool
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, inv); err != nil {
			return err
		}

		if inv.Number != "" {
			if err := s.checkNumber(ctx, inv.Number, nil); err != nil {
				return err
			}
			if err := s.observeNumber(ctx, inv.Number); err != nil {
				return err
			}
		}

		if err := inv.ValidateDates(); err != nil {
			return err
		}

		if inv.Number == "" {
			number, err := s.allocateNumber(ctx, inv)
			if err != nil {
				return err
			}
			inv.Number = number
			allocated = true
		}

		inv.Recalculate()

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		if allocated && !s.allocationIsTransactional() {
			logger.Warn(ctx, "invoice number consumed without invoice, sequence gap",
				"number", inv.Number,
				"error", err)
		}
		return nil, err
	}

	s.runHook(ctx, domain.AfterCreate, inv)

	logger.Info(ctx, "invoice created",
		"id", inv.ID,
		"number", inv.Number,
		"type", inv.Type,
		"total", inv.Total.StringFixed(2))

	return inv, nil
}

// Update replaces the editable fields and lines of an invoice that is not PAID or CANCELLED.
// Status is left untouched; use ChangeStatus for workflow moves.
func (s *Service) Update(ctx context.Context, invoiceID id.ID, in Input) (*Invoice, error) {
	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := inv.Status.CanEdit(); err != nil {
			return err
		}
		if in.Type != "" && in.Type != inv.Type {
			return apperror.NewValidation("document type cannot be changed once numbered").
				WithDetail("field", "type")
		}

		in.applyTo(inv)
		if err := inv.validateFields(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, inv); err != nil {
			return err
		}

		if number := strings.TrimSpace(in.Number); number != "" {
			if number != inv.Number && !numerator.Validate(number) {
				return apperror.NewMalformedNumber(number)
			}
			if err := s.checkNumber(ctx, number, &inv.ID); err != nil {
				return err
			}
			if number != inv.Number {
				if err := s.observeNumber(ctx, number); err != nil {
					return err
				}
			}
			inv.Number = number
		}

		if err := inv.ValidateDates(); err != nil {
			return err
		}

		inv.Recalculate()
		inv.Touch(s.now())

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runHook(ctx, domain.AfterUpdate, inv)

	logger.Info(ctx, "invoice updated",
		"id", inv.ID,
		"number", inv.Number,
		"version", inv.Version)

	return inv, nil
}

// ChangeStatus moves an invoice along the workflow. Lines and totals are not touched.
func (s *Service) ChangeStatus(ctx context.Context, invoiceID id.ID, to Status) (*Invoice, error) {
	if !to.IsValid() {
		return nil, apperror.NewValidation("unknown invoice status").
			WithDetail("field", "status").
			WithDetail("value", string(to))
	}

	var (
		inv  *Invoice
		from Status
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		from = inv.Status
		if err := ValidateTransition(from, to); err != nil {
			return err
		}

		inv.Status = to
		inv.Touch(s.now())
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		inv.Lines, err = s.repo.GetLines(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runHook(ctx, domain.AfterStatusChange, inv)

	logger.Info(ctx, "invoice status changed",
		"id", inv.ID,
		"number", inv.Number,
		"from", from,
		"to", to)

	return inv, nil
}

// Delete removes a draft invoice and its lines.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := inv.Status.CanDelete(); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, invoiceID); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runHook(ctx, domain.AfterDelete, inv)

	logger.Info(ctx, "invoice deleted",
		"id", inv.ID,
		"number", inv.Number)

	return nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.withLines(ctx, inv)
}

// GetByNumber retrieves an invoice with lines by its legal number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.repo.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	return s.withLines(ctx, inv)
}

// ListOverdue returns invoices due before asOf that are neither paid nor cancelled.
// Lines are not loaded.
func (s *Service) ListOverdue(ctx context.Context, asOf time.Time) ([]*Invoice, error) {
	return s.repo.ListOverdue(ctx, asOf)
}

// CountOverdue counts the invoices ListOverdue would return.
func (s *Service) CountOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.CountOverdue(ctx, asOf)
}

func (s *Service) withLines(ctx context.Context, inv *Invoice) (*Invoice, error) {
	lines, err := s.repo.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	inv.Lines = lines
	return inv, nil
}

// checkReferences verifies the client and, when set, the project exist.
func (s *Service) checkReferences(ctx context.Context, inv *Invoice) error {
	ok, err := s.clients.Exists(ctx, inv.ClientID)
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return apperror.NewValidation("client does not exist").
			WithDetail("field", "clientId").
			WithDetail("value", inv.ClientID.String())
	}

	if inv.ProjectID == nil {
		return nil
	}
	ok, err = s.projects.Exists(ctx, *inv.ProjectID)
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if !ok {
		return apperror.NewValidation("project does not exist").
			WithDetail("field", "projectId").
			WithDetail("value", inv.ProjectID.String())
	}
	return nil
}

// checkNumber validates the format of a supplied number (on create) and its uniqueness.
// excluded is the invoice being updated, nil on create.
func (s *Service) checkNumber(ctx context.Context, number string, excluded *id.ID) error {
	var (
		exists bool
		err    error
	)
	if excluded == nil {
		if !numerator.Validate(number) {
			return apperror.NewMalformedNumber(number)
		}
		exists, err = s.repo.ExistsByNumber(ctx, number)
	} else {
		exists, err = s.repo.ExistsByNumberExcluding(ctx, number, *excluded)
	}
	if err != nil {
		return fmt.Errorf("check number: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("invoice", "number", number)
	}
	return nil
}

func (s *Service) allocateNumber(ctx context.Context, inv *Invoice) (string, error) {
	key := numerator.Key{Prefix: inv.Type.Prefix(), Year: inv.SequenceYear(s.now())}
	seq, err := s.allocator.Allocate(ctx, key)
	if err != nil {
		return "", err
	}
	return numerator.Format(key.Prefix, key.Year, seq), nil
}

// observeNumber moves the counter of a supplied number's (prefix, year) past
// its sequence, so allocation never collides with it later.
func (s *Service) observeNumber(ctx context.Context, number string) error {
	observer, ok := s.allocator.(numerator.Observer)
	if !ok {
		return nil
	}
	n, err := numerator.Parse(number)
	if err != nil {
		return err
	}
	if n.Key().Validate() != nil {
		return nil
	}
	if err := observer.Observe(ctx, n.Key(), n.Sequence); err != nil {
		return fmt.Errorf("observe number: %w", err)
	}
	return nil
}

func (s *Service) allocationIsTransactional() bool {
	t, ok := s.allocator.(transactional)
	return ok && t.Transactional()
}

func (s *Service) runHook(ctx context.Context, event domain.HookEvent, inv *Invoice) {
	if err := s.hooks.Run(ctx, event, inv); err != nil {
		logger.Warn(ctx, "invoice hook failed", "event", event, "id", inv.ID, "error", err)
	}
}
