package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadhifra/portofolio-api/internal/apperror"
	"github.com/nadhifra/portofolio-api/internal/model"
	"github.com/nadhifra/portofolio-api/internal/repository"
	"github.com/nadhifra/portofolio-api/internal/validate"
)

const MaxTitleLength = 200

// createPortfolioRules is the declarative shape of a portfolio-create
// payload. Level and category are closed enums — no free text.
var createPortfolioRules = []validate.Rule{
	{Field: "title", Kind: validate.String, Required: true, MaxLen: MaxTitleLength},
	{Field: "level", Kind: validate.String, Required: true, Enum: model.Levels},
	{Field: "category", Kind: validate.String, Required: true, Enum: model.Categories},
	{Field: "description", Kind: validate.String, Clearable: true, MaxLen: 2000},
	{Field: "docsUrl", Kind: validate.Path, Clearable: true, MaxLen: MaxFieldLength},
	{Field: "date", Kind: validate.Date},
}

// PortfolioService handles portfolio creation and browsing.
type PortfolioService struct {
	portfolios repository.PortfolioRepository
	users      repository.UserRepository
	logger     *slog.Logger
}

// NewPortfolioService creates a PortfolioService.
func NewPortfolioService(portfolios repository.PortfolioRepository, users repository.UserRepository, logger *slog.Logger) *PortfolioService {
	return &PortfolioService{
		portfolios: portfolios,
		users:      users,
		logger:     logger,
	}
}

// Create records a new achievement or activity for the identity's
// profile.
//
// Two-step identity protocol: resolve the profile for the subject
// first (no profile → NotFound, distinct from the middleware's 401),
// then insert with the resolved internal owner id. The occurred-on
// date defaults to now when the payload omits it.
func (s *PortfolioService) Create(ctx context.Context, subjectID string, payload map[string]any) (*model.Portfolio, error) {
	if subjectID == "" {
		return nil, apperror.Unauthorized("valid authentication required")
	}

	values, violations := validate.Apply(createPortfolioRules, payload)
	if len(violations) > 0 {
		return nil, apperror.Invalid(violations)
	}

	owner, err := s.users.GetUserBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	portfolio := &model.Portfolio{
		Title:       values.String("title"),
		Level:       values.String("level"),
		Category:    values.String("category"),
		Description: values.String("description"),
		DocsURL:     values.String("docsUrl"),
		Date:        values.Time("date"),
		UserID:      owner.ID,
	}

	if err := s.portfolios.CreatePortfolio(ctx, portfolio); err != nil {
		s.logger.Error("failed to create portfolio",
			slog.String("owner", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating portfolio: %w", err)
	}

	s.logger.Info("portfolio created",
		slog.String("id", portfolio.ID),
		slog.String("owner", owner.ID),
		slog.String("category", portfolio.Category),
	)

	return portfolio, nil
}

// List returns all portfolios with their owner summaries, newest
// first. category narrows to one enumerated value; "" lists all.
func (s *PortfolioService) List(ctx context.Context, category string) ([]model.PortfolioWithOwner, error) {
	category = strings.TrimSpace(category)
	if category != "" && category != model.CategoryAchievement && category != model.CategoryActivity {
		return nil, apperror.ValidationFailed("category",
			fmt.Sprintf("category must be one of: %s", strings.Join(model.Categories, ", ")))
	}

	portfolios, err := s.portfolios.ListPortfolios(ctx, repository.PortfolioFilter{Category: category})
	if err != nil {
		s.logger.Error("failed to list portfolios", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing portfolios: %w", err)
	}

	return portfolios, nil
}

// Get returns one portfolio with the full owner projection.
func (s *PortfolioService) Get(ctx context.Context, id string) (*model.PortfolioDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "portfolio ID is required")
	}

	return s.portfolios.GetPortfolioWithOwner(ctx, id)
}
