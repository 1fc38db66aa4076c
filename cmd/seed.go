package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	networkDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/network"
	notificationDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/notification"
	userDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/user"
	"github.com/frahmantamala/sensor-monitoring/internal/devserver"
	"github.com/frahmantamala/sensor-monitoring/internal/sensor"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if !cfg.Database.IsPostgres() {
			if err := devserver.NewStore(db).AutoMigrate(); err != nil {
				log.Fatalf("failed to migrate sqlite schema: %v", err)
			}
		}

		if clearData {
			fmt.Println("clearing existing data")
			for _, table := range []string{"sensor_readings", "notifications", "reports", "sensors", "networks", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		acme := "acme"

		users := []userDatamodel.User{
			{Username: "alice", Name: "Alice", Role: "user", Company: &acme, PasswordHash: string(hash), IsActive: true},
			{Username: "bob", Name: "Bob", Role: "admin", Company: &acme, PasswordHash: string(hash), IsActive: true},
			{Username: "carol", Name: "Carol", Role: "moderator", Company: &acme, PasswordHash: string(hash), IsActive: true},
			{Username: "dave", Name: "Dave", Role: "user", PasswordHash: string(hash), IsActive: true},
		}
		for i := range users {
			var count int64
			db.Model(&userDatamodel.User{}).Where("username = ?", users[i].Username).Count(&count)
			if count > 0 {
				fmt.Printf("user %s already exists, skipping\n", users[i].Username)
				continue
			}
			if err := db.Create(&users[i]).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", users[i].Username, err)
			}
		}

		network := networkDatamodel.Network{
			ID:      "net-1",
			Name:    "Plant Floor",
			Company: acme,
			Users:   []string{"alice", "bob", "carol"},
		}
		if err := db.Where("id = ?", network.ID).FirstOrCreate(&network).Error; err != nil {
			log.Fatalf("failed to seed network: %v", err)
		}

		sensors := []sensor.Sensor{
			{SensorID: "s-100", NetworkID: "net-1", Location: "Boiler Room", Region: "north", IsActive: true, Coordinates: sensor.Coordinates{Lat: 52.37, Lng: 4.89}, AccessUsers: []string{"alice"}, LastUpdated: time.Now()},
			{SensorID: "s-101", NetworkID: "net-1", Location: "Loading Dock", Region: "south", IsActive: true, Coordinates: sensor.Coordinates{Lat: 52.36, Lng: 4.88}, AccessUsers: []string{}, LastUpdated: time.Now()},
		}
		for i := range sensors {
			dm := sensor.ToDataModel(&sensors[i])
			if err := db.Where("sensor_id = ?", dm.SensorID).FirstOrCreate(dm).Error; err != nil {
				log.Fatalf("failed to seed sensor %s: %v", dm.SensorID, err)
			}
		}

		for hour := 0; hour < 6; hour++ {
			payload, _ := json.Marshal(map[string]interface{}{
				"temperature": 20.0 + float64(hour),
				"humidity":    40 + hour,
			})
			reading := networkDatamodel.SensorReading{
				SensorID:   "s-100",
				NetworkID:  "net-1",
				RecordedAt: time.Now().Add(-time.Duration(6-hour) * time.Hour),
				Payload:    string(payload),
			}
			if err := db.Create(&reading).Error; err != nil {
				log.Fatalf("failed to seed reading: %v", err)
			}
		}

		aliceID := users[0].ID
		notif := notificationDatamodel.Notification{
			ID:             "seed-req-1",
			Type:           "access_request",
			SenderUserID:   &aliceID,
			SenderUsername: "alice",
			SenderRole:     "user",
			RecipientRole:  "admin",
			SensorID:       "s-101",
			NetworkID:      "net-1",
			Company:        acme,
			Message:        "alice requests access to sensor s-101",
			Status:         "pending",
			Timestamp:      time.Now(),
		}
		if err := db.Where("id = ?", notif.ID).FirstOrCreate(&notif).Error; err != nil {
			log.Fatalf("failed to seed notification: %v", err)
		}

		fmt.Println("seed complete: users alice/bob/carol/dave (password: password), network net-1, sensors s-100/s-101")
	},
}
