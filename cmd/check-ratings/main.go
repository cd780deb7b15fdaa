package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./videoarena.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	fmt.Println("🔍 Checking Video Arena Data")
	fmt.Println("============================")

	veoKey := os.Getenv("VEO_API_KEY")
	if veoKey == "" {
		fmt.Println("⚠️  WARNING: VEO_API_KEY not configured!")
		fmt.Println("   Free-tier Veo generations will not be available")
		fmt.Println()
	} else {
		fmt.Println("✅ Free-tier Veo key configured")
		fmt.Println()
	}

	var ratingCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM ratings").Scan(&ratingCount); err != nil {
		log.Fatal("Failed to count ratings:", err)
	}
	fmt.Printf("⭐ Total ratings: %d\n", ratingCount)

	rows, err := db.Query(`
		SELECT model, COUNT(*), AVG(rating)
		FROM ratings
		GROUP BY model
		ORDER BY AVG(rating) DESC`)
	if err != nil {
		log.Fatal("Failed to query rating summary:", err)
	}
	defer rows.Close()

	for rows.Next() {
		var model string
		var count int
		var avg float64
		if err := rows.Scan(&model, &count, &avg); err != nil {
			log.Fatal("Failed to scan rating summary:", err)
		}
		fmt.Printf("   - %s: %d ratings, %.2f average\n", model, count, avg)
	}

	var promptCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM prompts").Scan(&promptCount); err != nil {
		log.Fatal("Failed to count prompts:", err)
	}
	fmt.Printf("📝 Saved prompts: %d\n", promptCount)
}
