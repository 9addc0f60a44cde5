package settings

import "github.com/m04kA/SMC-StudioScheduler/pkg/dbmetrics"

// DBExecutor интерфейс выполнения запросов
type DBExecutor = dbmetrics.DBExecutor
