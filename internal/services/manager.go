package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/cache"
	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/metrics"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/validator"
)

// ServiceManager hands the transport layer its services
type ServiceManager interface {
	Suggestibility() SuggestibilityService
	Review() ReviewService
	Quality() QualityService
	Export() ExportService
	Questionnaire() QuestionnaireService
}

// Dependencies collects everything the services are built from
type Dependencies struct {
	Repo      repositories.Repository
	Catalogs  catalog.Provider
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Metrics   metrics.Recorder
	Validator *validator.Validator
	Logger    *slog.Logger
	StyleTTL  time.Duration
}

type serviceManager struct {
	suggestibility SuggestibilityService
	review         ReviewService
	quality        QualityService
	export         ExportService
	questionnaire  QuestionnaireService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopCache()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoop()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &serviceManager{
		suggestibility: NewSuggestibilityService(deps.Repo, deps.Catalogs, deps.Cache, deps.Publisher, deps.Metrics, deps.Validator, deps.Logger, deps.StyleTTL),
		review:         NewReviewService(deps.Repo, deps.Catalogs, deps.Publisher, deps.Metrics, deps.Validator, deps.Logger),
		quality:        NewQualityService(deps.Repo, deps.Catalogs, deps.Cache, deps.Publisher, deps.Metrics, deps.Logger),
		export:         NewExportService(deps.Repo, deps.Logger),
		questionnaire:  NewQuestionnaireService(deps.Repo, deps.Catalogs, deps.Logger),
	}
}

func (m *serviceManager) Suggestibility() SuggestibilityService { return m.suggestibility }
func (m *serviceManager) Review() ReviewService                 { return m.review }
func (m *serviceManager) Quality() QualityService               { return m.quality }
func (m *serviceManager) Export() ExportService                 { return m.export }
func (m *serviceManager) Questionnaire() QuestionnaireService   { return m.questionnaire }
