// cmd/seedcatalogo loads a demo catalog and customers into the configured
// store. Products are matched by SKU, so running it twice changes nothing.
// Uso: go run ./cmd/seedcatalogo
package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"joyeriapos/internal/config"
	"joyeriapos/internal/infra"
	"joyeriapos/internal/model"
	"joyeriapos/internal/repository"
)

var catalogo = []model.Producto{
	{SKU: "AN-PL-001", Nombre: "Anillo plata 925 liso", Precio: decimal.RequireFromString("580"), Stock: 12, StockMinimo: 3, Categoria: "Anillos"},
	{SKU: "AN-OR-002", Nombre: "Anillo oro 18k solitario", Precio: decimal.RequireFromString("18500"), Stock: 2, StockMinimo: 1, Categoria: "Anillos"},
	{SKU: "CO-PL-001", Nombre: "Collar plata cadena veneciana", Precio: decimal.RequireFromString("1250.50"), Stock: 8, StockMinimo: 2, Categoria: "Collares"},
	{SKU: "AR-AC-001", Nombre: "Aretes acero quirúrgico", Precio: decimal.RequireFromString("320"), Stock: 25, StockMinimo: 5, Categoria: "Aretes"},
	{SKU: "PU-PL-001", Nombre: "Pulsera plata dije corazón", Precio: decimal.RequireFromString("890"), Stock: 6, StockMinimo: 2, Categoria: "Pulseras"},
	{SKU: "RE-AC-001", Nombre: "Reloj acero clásico", Precio: decimal.RequireFromString("4200"), Stock: 1, StockMinimo: 1, Categoria: "Relojes"},
}

func strp(s string) *string { return &s }

var clientes = []model.Cliente{
	{Nombre: "María López", Email: strp("maria.lopez@example.com"), Nivel: strp("oro")},
	{Nombre: "Jorge Pérez", Telefono: strp("+52 55 1234 5678")},
	{Nombre: "Ana Torres", Email: strp("ana.torres@example.com"), Nivel: strp("plata")},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var rdb *redis.Client
	if cfg.StoreDriver == "redis" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	}

	ctx := context.Background()
	docs, err := repository.OpenDocumentStore(cfg, rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open document store")
	}
	store, err := repository.NewStore(ctx, docs, cfg.PersistTimeout())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load store")
	}

	existentes, err := store.ListClientes(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list clientes")
	}

	var nuevos, nuevosClientes int
	err = store.Transaction(ctx, func(tx *repository.Tx) error {
		for _, p := range catalogo {
			if tx.FindProductoPorSKU(p.SKU) != nil {
				continue
			}
			tx.CrearProducto(p)
			nuevos++
		}
		if len(existentes) > 0 {
			return nil
		}
		for _, c := range clientes {
			tx.GuardarCliente(c)
			nuevosClientes++
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("productos", nuevos).Int("clientes", nuevosClientes).Str("driver", cfg.StoreDriver).Msg("catalogo cargado")
}
