package usecase

import (
	"errors"
	"fmt"
	"strings"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/repository"

	"github.com/rs/zerolog"
)

// ErrAccountNotFound is returned when a mapping names an unknown account.
var ErrAccountNotFound = errors.New("account not found")

// MappingOverview is what the mapping screen needs in one call.
type MappingOverview struct {
	Categories []string                     `json:"categories"`
	Mappings   []*domain.CategoryAccountMap `json:"mappings"`
	Accounts   []*domain.Account            `json:"accounts"`
}

// CreatedMapping is one mapping produced by AutoGenerate.
type CreatedMapping struct {
	Category    string `json:"category"`
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	Score       int    `json:"score"`
}

// MappingUsecase manages category -> account mappings.
type MappingUsecase interface {
	List() (*MappingOverview, error)
	Set(category, accountID string) (*domain.CategoryAccountMap, error)
	AutoGenerate() ([]CreatedMapping, error)
}

type mappingUsecase struct {
	mapRepo    repository.CategoryMapRepository
	entityRepo repository.EntityRepository
	categories []string
	logger     zerolog.Logger
}

// NewMappingUsecase creates the mapping usecase for the configured categories.
func NewMappingUsecase(
	mapRepo repository.CategoryMapRepository,
	entityRepo repository.EntityRepository,
	categories []string,
	logger zerolog.Logger,
) MappingUsecase {
	return &mappingUsecase{
		mapRepo:    mapRepo,
		entityRepo: entityRepo,
		categories: categories,
		logger:     logger,
	}
}

func (u *mappingUsecase) List() (*MappingOverview, error) {
	mappings, err := u.mapRepo.List()
	if err != nil {
		return nil, err
	}
	accounts, err := u.entityRepo.ListAccounts()
	if err != nil {
		return nil, err
	}
	return &MappingOverview{Categories: u.categories, Mappings: mappings, Accounts: accounts}, nil
}

func (u *mappingUsecase) Set(category, accountID string) (*domain.CategoryAccountMap, error) {
	category = strings.TrimSpace(category)
	if category == "" || accountID == "" {
		return nil, errors.New("category and accountId are required")
	}
	account, err := u.entityRepo.FindAccountByQboID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	mapping := &domain.CategoryAccountMap{Category: category, AccountID: account.QboID, AccountName: account.Name}
	if err := u.mapRepo.Upsert(mapping); err != nil {
		return nil, fmt.Errorf("failed to save mapping: %w", err)
	}
	return mapping, nil
}

// AutoGenerate maps every unmapped category that has a rule to its best
// scoring account. Categories without a positive score stay unmapped.
func (u *mappingUsecase) AutoGenerate() ([]CreatedMapping, error) {
	accounts, err := u.entityRepo.ListAccounts()
	if err != nil {
		return nil, err
	}
	existing, err := u.mapRepo.List()
	if err != nil {
		return nil, err
	}
	mapped := make(map[string]bool, len(existing))
	for _, m := range existing {
		mapped[strings.ToLower(m.Category)] = true
	}

	created := []CreatedMapping{}
	for _, category := range u.categories {
		if mapped[strings.ToLower(category)] {
			continue
		}
		rule, ok := ruleFor(category)
		if !ok {
			continue
		}

		var best *domain.Account
		bestScore := 0
		for _, a := range accounts {
			if score := scoreAccount(a, rule); score > bestScore {
				best, bestScore = a, score
			}
		}
		if best == nil {
			continue
		}

		if err := u.mapRepo.Upsert(&domain.CategoryAccountMap{Category: category, AccountID: best.QboID, AccountName: best.Name}); err != nil {
			return created, fmt.Errorf("failed to save mapping for %s: %w", category, err)
		}
		created = append(created, CreatedMapping{Category: category, AccountID: best.QboID, AccountName: best.Name, Score: bestScore})
	}

	u.logger.Info().Int("created", len(created)).Msg("[Sync] Auto-generated category mappings")
	return created, nil
}
