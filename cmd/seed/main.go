// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/documents/order"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/document_repo"
	"stockledger/internal/infrastructure/storage/postgres/movement_repo"
	"stockledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Print a bcrypt hash for AUTH_USERS and exit
	if password := os.Getenv("HASH_PASSWORD"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalw("failed to hash password", "error", err)
		}
		fmt.Println(hash)
		return
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	productService := product.NewService(catalog_repo.NewProductRepo(txManager), txManager)
	movementService := movement.NewService(movement_repo.NewMovementRepo(txManager), txManager, productService, nil)
	orderService := order.NewService(document_repo.NewOrderRepo(txManager), txManager, productService, movementService)

	products, err := seedProducts(ctx, productService, log)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	if err := seedOrder(ctx, orderService, products, log); err != nil {
		log.Fatalw("failed to seed demo order", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedProducts(ctx context.Context, svc *product.Service, log *logger.Logger) ([]*product.Product, error) {
	demo := []*product.Product{
		newDemoProduct("TS-001", "Basic T-Shirt", product.KindVariantMaster, nil, 1999),
		newDemoProduct("TS-001-M", "Basic T-Shirt (M)", product.KindVariant, strPtr("4006381333931"), 1999),
		newDemoProduct("TS-001-L", "Basic T-Shirt (L)", product.KindVariant, strPtr("4006381333948"), 1999),
		newDemoProduct("MUG-010", "Coffee Mug", product.KindSimple, strPtr("4006381333955"), 899),
	}

	seeded := make([]*product.Product, 0, len(demo))
	for _, p := range demo {
		existing, err := svc.GetByCode(ctx, p.Code)
		if err == nil {
			log.Infow("product already exists", "code", p.Code)
			seeded = append(seeded, existing)
			continue
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}

		if p.Kind == product.KindVariant {
			master, err := svc.GetByCode(ctx, "TS-001")
			if err != nil {
				return nil, err
			}
			masterID := master.GetID().String()
			p.VariantMasterID = &masterID
		}

		if err := svc.Create(ctx, p); err != nil {
			return nil, err
		}
		log.Infow("product created", "code", p.Code, "id", p.GetID())
		seeded = append(seeded, p)
	}

	return seeded, nil
}

func seedOrder(ctx context.Context, svc *order.Service, products []*product.Product, log *logger.Logger) error {
	const externalID = "DEMO-100001"

	if _, err := svc.GetByExternalID(ctx, externalID); err == nil {
		log.Infow("demo order already exists", "external_id", externalID)
		return nil
	} else if !apperror.IsNotFound(err) {
		return err
	}

	vat := types.MustDecimal("19")
	lines := make([]order.LineParams, 0, 2)
	for _, p := range products {
		if p.Kind == product.KindVariantMaster {
			continue
		}
		listPrice, ok := p.FindPriceByCurrency("EUR")
		if !ok {
			continue
		}
		lines = append(lines, order.LineParams{
			ProductID:     p.GetID(),
			Quantity:      1,
			UnitPrice:     types.NewAmount(int64(types.WithoutVAT(listPrice.Value, vat)), "EUR"),
			VATPercentage: vat,
		})
		if len(lines) == 2 {
			break
		}
	}

	o, err := svc.Create(ctx, order.CreateParams{
		ExternalID: externalID,
		PlacedAt:   time.Now().Add(-24 * time.Hour),
		Comment:    "demo order",
		Lines:      lines,
	})
	if err != nil {
		return err
	}
	log.Infow("demo order created", "external_id", externalID, "lines", len(o.Lines))

	if _, err := svc.RecordSale(ctx, o.GetID()); err != nil {
		return err
	}
	log.Infow("demo sale recorded", "order_id", o.GetID())

	return nil
}

func newDemoProduct(code, name string, kind product.Kind, barcode *string, priceEUR int64) *product.Product {
	p := product.NewProduct(code, name, kind)
	p.Barcode = barcode
	p.SetPrice("EUR", types.MinorUnits(priceEUR))
	return p
}

func strPtr(s string) *string { return &s }
