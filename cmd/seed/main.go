package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"crmcore/internal/database"
	"crmcore/internal/domain"
)

// Seeds geographic reference data and demo principals for local development.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "crm.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM conversion_requests")
	db.Exec("DELETE FROM opportunities")
	db.Exec("DELETE FROM lead_contacts")
	db.Exec("DELETE FROM leads")
	db.Exec("DELETE FROM contacts")
	db.Exec("DELETE FROM companies")
	db.Exec("DELETE FROM users")
	db.Exec("DELETE FROM cities")
	db.Exec("DELETE FROM states")
	db.Exec("DELETE FROM countries")

	log.Println("Seeding geography...")
	countries := []domain.Country{
		{Name: "Kazakhstan", ISOCode: "KZ"},
		{Name: "India", ISOCode: "IN"},
		{Name: "United States", ISOCode: "US"},
		{Name: "Germany", ISOCode: "DE"},
	}
	for i := range countries {
		if err := db.Create(&countries[i]).Error; err != nil {
			log.Fatal("country seed failed:", err)
		}
	}

	states := []domain.State{
		{CountryID: countries[0].ID, Name: "Almaty Region"},
		{CountryID: countries[1].ID, Name: "Maharashtra"},
		{CountryID: countries[1].ID, Name: "Karnataka"},
		{CountryID: countries[2].ID, Name: "California"},
	}
	for i := range states {
		if err := db.Create(&states[i]).Error; err != nil {
			log.Fatal("state seed failed:", err)
		}
	}

	cities := []domain.City{
		{StateID: states[0].ID, Name: "Almaty"},
		{StateID: states[1].ID, Name: "Mumbai"},
		{StateID: states[2].ID, Name: "Bengaluru"},
		{StateID: states[3].ID, Name: "San Francisco"},
	}
	for i := range cities {
		if err := db.Create(&cities[i]).Error; err != nil {
			log.Fatal("city seed failed:", err)
		}
	}

	log.Println("Creating users...")
	users := []struct {
		email    string
		name     string
		role     domain.Role
		password string
	}{
		{"admin@crm.local", "Admin", domain.RoleAdmin, "admin123"},
		{"sales@crm.local", "Sales Rep", domain.RoleSales, "sales123"},
		{"reviewer@crm.local", "Reviewer", domain.RoleReviewer, "review123"},
	}
	for _, u := range users {
		hash, _ := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		user := domain.User{
			Email:        u.email,
			PasswordHash: string(hash),
			Name:         u.name,
			Role:         u.role,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("user seed failed:", err)
		}
	}

	log.Println("Seed complete.")
}
