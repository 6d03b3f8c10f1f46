package seeders

import (
	"fmt"
	"log"
	"strings"

	"attendify_go/database"
	"attendify_go/models"
	"attendify_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedSubjects()
	SeedFaculty()

	log.Println("Database seeding completed successfully!")
}

// departmentSubjects is the bootstrap subject catalog, keyed by department.
var departmentSubjects = map[string][]string{
	"cse":  {"Python Programming", "Data Structures", "Database Management", "Computer Networks", "Operating Systems"},
	"ece":  {"Digital Electronics", "Signals and Systems", "Communication Systems", "VLSI Design", "Microprocessors"},
	"ise":  {"Information Security", "Software Engineering", "Web Technologies", "Cloud Computing", "AI & ML"},
	"mech": {"Thermodynamics", "Machine Design", "Fluid Mechanics", "Manufacturing Process", "Engineering Materials"},
}

// subjectCode derives a stable catalog code from department and position,
// e.g. CSE101 for the first cse subject.
func subjectCode(department string, index int) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(department), 101+index)
}

// SeedSubjects seeds the subject catalog
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping...")
		return
	}

	for department, names := range departmentSubjects {
		for i, name := range names {
			subject := models.Subject{
				Code:       subjectCode(department, i),
				Name:       name,
				Department: department,
			}
			if err := database.DB.Create(&subject).Error; err != nil {
				log.Printf("Error seeding subject %s/%s: %v", department, name, err)
			}
		}
	}

	log.Println("Subjects seeded successfully")
}

// SeedFaculty seeds a default admin account
func SeedFaculty() {
	var count int64
	database.DB.Model(&models.Faculty{}).Count(&count)
	if count > 0 {
		log.Println("Faculty already seeded, skipping...")
		return
	}

	hashedPassword, _ := utils.HashPassword("password123")

	admin := models.Faculty{
		FacultyID:   "ADMIN001",
		Name:        "Administrator",
		Email:       "admin@attendify.local",
		Department:  "cse",
		Designation: "Admin",
		JoiningDate: "2024-01-01",
		Password:    hashedPassword,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin faculty: %v", err)
		return
	}

	log.Println("Faculty seeded successfully")
}
