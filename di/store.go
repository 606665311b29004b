package di

import (
	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/infras/otel"
	"cafebook/infras/postgres"
	"cafebook/infras/sheets"
	"cafebook/shared/constant"
	"cafebook/shared/rowstore"
)

// ProvideRowStore selects the row store named by STORE_DRIVER.
func ProvideRowStore(cfg *config.Config, ot otel.Otel) rowstore.Store {
	switch cfg.Store.Driver {
	case constant.StoreDriverPostgres:
		return postgres.NewRowStore(cfg, ot)
	case constant.StoreDriverMemory:
		log.Warn().Msg("Using in-memory row store, reservations will not survive a restart")

		return rowstore.NewMemory()
	default:
		return sheets.New(cfg, ot)
	}
}
