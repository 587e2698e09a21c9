package services

import (
	"log/slog"

	"github.com/SAP-F-2025/assessment-engine/internal/cache"
	"github.com/SAP-F-2025/assessment-engine/internal/events"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
	"github.com/SAP-F-2025/assessment-engine/internal/validator"
)

// ServiceManager groups the engine services the transport layers depend on.
type ServiceManager interface {
	Selection() SelectionService
	Calibration() CalibrationService
	Grading() GradingService
	Export() ExportService
	Import() ImportService
}

type ManagerConfig struct {
	Selection SelectionConfig
	Grading   GradingConfig
}

type serviceManager struct {
	selection   SelectionService
	calibration CalibrationService
	grading     GradingService
	export      ExportService
	importer    ImportService
}

func NewServiceManager(
	repo repositories.Repository,
	sel *selector.Selector,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config ManagerConfig,
) ServiceManager {
	calibration := NewCalibrationService(repo, publisher, logger, config.Selection.RecalibrationMinAttempts)
	return &serviceManager{
		selection:   NewSelectionService(repo, sel, calibration, logger, validator, config.Selection),
		calibration: calibration,
		grading:     NewGradingService(repo, cacheManager, publisher, logger, validator, config.Grading),
		export:      NewExportService(repo, logger, validator),
		importer:    NewImportService(repo, logger, validator),
	}
}

func (m *serviceManager) Selection() SelectionService     { return m.selection }
func (m *serviceManager) Calibration() CalibrationService { return m.calibration }
func (m *serviceManager) Grading() GradingService         { return m.grading }
func (m *serviceManager) Export() ExportService           { return m.export }
func (m *serviceManager) Import() ImportService           { return m.importer }
