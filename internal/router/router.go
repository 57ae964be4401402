package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-vaccination-schedule/docs"
	mem "pet-vaccination-schedule/internal/adapters/storage/memory"
	pg "pet-vaccination-schedule/internal/adapters/storage/postgres"
	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
	"pet-vaccination-schedule/internal/middleware"
	"pet-vaccination-schedule/internal/platform/logger"
	"pet-vaccination-schedule/internal/platform/metrics"
	"pet-vaccination-schedule/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger  logger.Logger    // nil => Nop
	Metrics *metrics.Metrics // nil => registry nuevo

	// Vacío => "*"
	CORSAllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderDebugUserID, middleware.HeaderDebugStaff},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		ownerRepo       owners.Repository
		petRepo         pets.Repository
		vaccineRepo     vaccines.Repository
		vaccinationRepo vaccinations.Repository
	)

	if opts.DB != nil {
		ownerRepo = pg.NewOwnersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
		vaccineRepo = pg.NewVaccinesRepo(opts.DB)
		vaccinationRepo = pg.NewVaccinationsRepo(opts.DB)
	} else {
		store := mem.NewStore()
		ownerRepo = store.Owners()
		petRepo = store.Pets()
		vaccineRepo = store.Vaccines()
		vaccinationRepo = store.Vaccinations()
	}

	engine := access.NewEngine(access.WithLogger(log), access.WithMetrics(m))

	// Services por módulo
	ownersSvc := owners.NewService(ownerRepo, owners.WithMetrics(m))
	petsSvc := pets.NewService(petRepo, ownersSvc,
		pets.WithMetrics(m),
		pets.WithDoseHistory(vaccinations.NewDoseHistory(vaccinationRepo)),
	)
	vaccinesSvc := vaccines.NewService(vaccineRepo, vaccines.WithMetrics(m))
	vaccinationsSvc := vaccinations.NewService(vaccinationRepo, petsSvc, vaccinesSvc, vaccinations.WithMetrics(m))

	// Rutas por módulo
	owners.RegisterRoutes(r, ownersSvc, engine)
	pets.RegisterRoutes(r, petsSvc, engine)
	vaccines.RegisterRoutes(r, vaccinesSvc, engine)
	vaccinations.RegisterRoutes(r, vaccinationsSvc, engine)

	return r
}
