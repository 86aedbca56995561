package valuator

import (
	"fmt"
	"time"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database"
	"github.com/pznebula/valuator/valuator/database/repositories"
	"github.com/pznebula/valuator/valuator/engine"
	"github.com/pznebula/valuator/valuator/extraction"
	"github.com/pznebula/valuator/valuator/storage"
)

const (
	defaultCalibrationInterval = 6 * time.Hour
	defaultMaxConcurrentGames  = 2
)

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Catalog: catalog.Default(),
		Version: version,
		Commit:  commit,
	}
}

type App struct {
	Cfg     Config
	Catalog *catalog.Catalog
	Version string
	Commit  string
	DB      *database.DB

	FieldRepository   repositories.FieldRepository
	RecordRepository  repositories.RecordRepository
	MatrixRepository  repositories.MatrixRepository
	RuleRepository    repositories.RuleRepository
	ReportRepository  repositories.ReportRepository
	InsightRepository repositories.InsightRepository

	Fields           *engine.FieldResolver
	Calibrator       *engine.Calibrator
	RuleEngine       *engine.RuleEngine
	ComponentPricer  *engine.ComponentPricer
	ComparableFinder *engine.ComparableFinder
	Valuator         *engine.Valuator
	Scheduler        *engine.Scheduler

	AIClient         *extraction.Client
	Ingestor         *extraction.Ingestor
	SheetImporter    *extraction.SheetImporter
	ImageParser      *extraction.ImageParser
	InsightGenerator *extraction.InsightGenerator

	SpacesService *storage.SpacesService
}

// SetupServices wires repositories, the valuation engine and the extraction
// pipeline. The DB field must be set before calling this.
func (a *App) SetupServices() error {
	if a.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	bunDB := a.DB.BunDB()
	a.FieldRepository = repositories.NewFieldRepository(bunDB)
	a.RecordRepository = repositories.NewRecordRepository(bunDB)
	a.MatrixRepository = repositories.NewMatrixRepository(bunDB)
	a.RuleRepository = repositories.NewRuleRepository(bunDB)
	a.ReportRepository = repositories.NewReportRepository(bunDB)
	a.InsightRepository = repositories.NewInsightRepository(bunDB)

	a.Fields = engine.NewFieldResolver(a.FieldRepository, a.Catalog)
	a.Calibrator = engine.NewCalibrator(a.RecordRepository, a.MatrixRepository, a.ReportRepository, a.Fields, a.Catalog)
	a.RuleEngine = engine.NewRuleEngine(a.RuleRepository, a.MatrixRepository, a.Fields)

	pricer, err := engine.NewComponentPricer(a.MatrixRepository)
	if err != nil {
		return fmt.Errorf("failed to create component pricer: %w", err)
	}
	a.ComponentPricer = pricer
	a.ComparableFinder = engine.NewComparableFinder(a.RecordRepository)
	a.Valuator = engine.NewValuator(a.RuleEngine, a.ComponentPricer, a.ComparableFinder)

	interval := defaultCalibrationInterval
	if a.Cfg.Calibration.IntervalHours > 0 {
		interval = time.Duration(a.Cfg.Calibration.IntervalHours) * time.Hour
	}
	maxConcurrent := int64(defaultMaxConcurrentGames)
	if a.Cfg.Calibration.MaxConcurrentGames > 0 {
		maxConcurrent = int64(a.Cfg.Calibration.MaxConcurrentGames)
	}
	a.Scheduler = engine.NewScheduler(a.Calibrator, a.Catalog, interval, maxConcurrent)

	var archiver extraction.ScreenshotArchiver
	if a.Cfg.Spaces.Enabled {
		spaces, err := storage.NewSpacesService(
			a.Cfg.Spaces.Key,
			a.Cfg.Spaces.Secret,
			a.Cfg.Spaces.Region,
			a.Cfg.Spaces.Bucket,
			a.Cfg.Spaces.Root,
		)
		if err != nil {
			return fmt.Errorf("failed to create spaces service: %w", err)
		}
		a.SpacesService = spaces
		archiver = spaces
	}

	timeout := time.Duration(a.Cfg.AI.TimeoutSeconds) * time.Second
	a.AIClient = extraction.NewClient(a.Cfg.AI.BaseURL, a.Cfg.AI.APIKey, timeout)

	policy := extraction.DefaultPolicy()
	a.Ingestor = extraction.NewIngestor(a.AIClient, a.RecordRepository, policy, a.Cfg.AI.Model)
	a.SheetImporter = extraction.NewSheetImporter(a.AIClient, a.RecordRepository, policy, a.Cfg.AI.Model)
	a.ImageParser = extraction.NewImageParser(a.AIClient, policy, a.Cfg.AI.VisionModel, archiver)
	a.InsightGenerator = extraction.NewInsightGenerator(a.AIClient, a.InsightRepository, a.Cfg.AI.Model)

	return nil
}
