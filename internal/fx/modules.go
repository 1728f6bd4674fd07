package fx

import (
	"go.uber.org/fx"

	"github.com/sp3dr4/wren/config"
	"github.com/sp3dr4/wren/internal/application"
)

// ConfigModule provides configuration-related dependencies
var ConfigModule = fx.Module("config",
	fx.Provide(config.Load),
)

// InfrastructureModule provides infrastructure-related dependencies
var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideStorage),
	fx.Provide(ProvideRedisClient),
	fx.Provide(ProvideSequence),
	fx.Provide(ProvideCache),
)

// ApplicationModule provides application service dependencies
var ApplicationModule = fx.Module("application",
	fx.Provide(ProvideClickTracker),
	fx.Provide(ProvideClickRecorder),
	fx.Provide(ProvideServiceConfig),
	fx.Provide(application.NewRecordStore),
	fx.Provide(application.NewURLService),
)

// MetricsModule provides metrics-related dependencies
var MetricsModule = fx.Module("metrics",
	fx.Provide(ProvideMetricsRegistry),
)

// CoreLifecycleModule provides core lifecycle management (shared by all entrypoints).
// Hooks stop in reverse order: clicks flush before redis and the repository close.
var CoreLifecycleModule = fx.Module("core-lifecycle",
	fx.Invoke(RegisterRepositoryHooks),
	fx.Invoke(RegisterRedisHooks),
	fx.Invoke(RegisterClickHooks),
)

// CoreModules combines the core modules shared by all entrypoints
var CoreModules = fx.Options(
	ConfigModule,
	InfrastructureModule,
	ApplicationModule,
	MetricsModule,
	CoreLifecycleModule,
)
