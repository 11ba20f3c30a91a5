package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"banyabot/internal/database"
	"banyabot/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// Наполняет каталог из configs/seed.yaml: города, бани с владельцами,
// мастера со связками. Повторный запуск безопасен, всё по upsert.
type seedConfig struct {
	Cities  []models.City `yaml:"cities"`
	Owners  []seedOwner   `yaml:"owners"`
	Masters []seedMaster  `yaml:"masters"`
}

type seedOwner struct {
	TelegramID int64       `yaml:"telegram_id"`
	Username   string      `yaml:"username"`
	FirstName  string      `yaml:"first_name"`
	LastName   string      `yaml:"last_name"`
	Phone      string      `yaml:"phone"`
	Banyas     []seedBanya `yaml:"banyas"`
}

type seedBanya struct {
	models.Banya `yaml:",inline"`
	City         string `yaml:"city"` // имя города вместо city_id
}

type seedMaster struct {
	TelegramID int64             `yaml:"telegram_id"`
	Username   string            `yaml:"username"`
	FirstName  string            `yaml:"first_name"`
	LastName   string            `yaml:"last_name"`
	Profile    models.BathMaster `yaml:"profile"`
	WorksAt    []string          `yaml:"works_at"` // имена бань
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/banyabot.db", "path to sqlite db")
		wipe     = flag.Bool("wipe", false, "drop catalog tables before seeding")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var cfg seedConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}
	if len(cfg.Cities) == 0 {
		return fmt.Errorf("no cities in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *wipe {
		if err = wipeCatalog(ctx, db); err != nil {
			return err
		}
	}

	cityIDs, err := seedCities(ctx, db, cfg.Cities)
	if err != nil {
		return err
	}

	banyaIDs, created, updated, err := seedOwners(ctx, db, cfg.Owners, cityIDs)
	if err != nil {
		return err
	}

	linked, err := seedMasters(ctx, db, cfg.Masters, banyaIDs)
	if err != nil {
		return err
	}

	fmt.Printf("done: cities=%d banyas created=%d updated=%d masters=%d links=%d\n",
		len(cityIDs), created, updated, len(cfg.Masters), linked)
	return nil
}

// wipeCatalog чистит каталог, не трогая пользователей и историю.
// Живые брони ссылаются на бани, такую базу не трогаем вовсе.
func wipeCatalog(ctx context.Context, db *database.DB) error {
	var bookings int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&bookings); err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if bookings > 0 {
		return fmt.Errorf("refusing to wipe: database has %d bookings", bookings)
	}

	for _, table := range []string{"banya_bath_masters", "bath_masters", "banya_photos", "banyas", "cities"} {
		if _, err := db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return nil
}

func seedCities(ctx context.Context, db *database.DB, cities []models.City) (map[string]int64, error) {
	ids := make(map[string]int64, len(cities))
	for i := range cities {
		city := cities[i]
		if city.Name == "" {
			continue
		}
		if err := db.CreateCity(ctx, &city); err != nil {
			return nil, fmt.Errorf("city %s: %w", city.Name, err)
		}
		ids[city.Name] = city.ID
	}
	return ids, nil
}

func seedOwners(ctx context.Context, db *database.DB, owners []seedOwner, cityIDs map[string]int64) (map[string]int64, int, int, error) {
	banyaIDs := make(map[string]int64)
	created, updated := 0, 0

	for _, o := range owners {
		user, err := upsertUser(ctx, db, o.TelegramID, o.Username, o.FirstName, o.LastName, o.Phone, models.RoleBanyaOwner)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("owner %s: %w", o.Username, err)
		}

		for _, sb := range o.Banyas {
			if sb.Name == "" {
				continue
			}
			cityID, ok := cityIDs[sb.City]
			if !ok {
				return nil, 0, 0, fmt.Errorf("banya %s: unknown city %q", sb.Name, sb.City)
			}

			banya := sb.Banya
			banya.OwnerID = user.ID
			banya.CityID = cityID
			banya.IsActive = true

			existingID, err := findBanya(ctx, db, user.ID, banya.Name)
			switch {
			case err == nil:
				banya.ID = existingID
				if err = db.UpdateBanya(ctx, &banya); err != nil {
					return nil, 0, 0, fmt.Errorf("update banya %s: %w", banya.Name, err)
				}
				updated++
			case err == sql.ErrNoRows:
				if err = db.CreateBanya(ctx, &banya); err != nil {
					return nil, 0, 0, fmt.Errorf("create banya %s: %w", banya.Name, err)
				}
				created++
			default:
				return nil, 0, 0, fmt.Errorf("find banya %s: %w", banya.Name, err)
			}
			banyaIDs[banya.Name] = banya.ID
		}
	}
	return banyaIDs, created, updated, nil
}

func seedMasters(ctx context.Context, db *database.DB, masters []seedMaster, banyaIDs map[string]int64) (int, error) {
	linked := 0
	for _, m := range masters {
		user, err := upsertUser(ctx, db, m.TelegramID, m.Username, m.FirstName, m.LastName, "", models.RoleBathMaster)
		if err != nil {
			return 0, fmt.Errorf("master %s: %w", m.Username, err)
		}

		profile := m.Profile
		profile.UserID = user.ID
		profile.IsAvailable = true
		if err = db.CreateBathMaster(ctx, &profile); err != nil {
			return 0, fmt.Errorf("master profile %s: %w", m.Username, err)
		}

		for _, banyaName := range m.WorksAt {
			banyaID, ok := banyaIDs[banyaName]
			if !ok {
				return 0, fmt.Errorf("master %s: unknown banya %q", m.Username, banyaName)
			}
			if err = db.LinkMasterToBanya(ctx, banyaID, profile.ID); err != nil {
				return 0, fmt.Errorf("link %s -> %s: %w", m.Username, banyaName, err)
			}
			linked++
		}
	}
	return linked, nil
}

// upsertUser заводит пользователя и принудительно выставляет роль:
// CreateOrUpdateUser роль существующего не меняет.
func upsertUser(ctx context.Context, db *database.DB, telegramID int64, username, firstName, lastName, phone, role string) (*models.User, error) {
	user := &models.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Phone:      phone,
		Role:       role,
	}
	if err := db.CreateOrUpdateUser(ctx, user); err != nil {
		return nil, err
	}
	if user.Role != role {
		if err := db.UpdateUserRole(ctx, user.ID, role); err != nil {
			return nil, err
		}
		user.Role = role
	}
	return user, nil
}

func findBanya(ctx context.Context, db *database.DB, ownerID int64, name string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM banyas WHERE owner_id = ? AND name = ?`, ownerID, name).Scan(&id)
	return id, err
}
