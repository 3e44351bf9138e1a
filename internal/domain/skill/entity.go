package skill

import (
	"time"

	"github.com/google/uuid"
)

// Skill is one entry of the vocabulary the résumé extractor recognises.
type Skill struct {
	ID        uuid.UUID
	Name      string
	Category  string
	CreatedAt time.Time
}

// Defaults is the built-in vocabulary. It seeds the skills table and is used
// as-is when the table is empty or unreachable.
func Defaults() []Skill {
	items := []struct {
		name     string
		category string
	}{
		{"Go", "Programming Language"},
		{"Python", "Programming Language"},
		{"Java", "Programming Language"},
		{"JavaScript", "Programming Language"},
		{"TypeScript", "Programming Language"},
		{"C#", "Programming Language"},
		{"C++", "Programming Language"},
		{"Ruby", "Programming Language"},
		{"PHP", "Programming Language"},
		{"Kotlin", "Programming Language"},
		{"Swift", "Programming Language"},
		{"Rust", "Programming Language"},
		{"SQL", "Database"},
		{"PostgreSQL", "Database"},
		{"MySQL", "Database"},
		{"MongoDB", "Database"},
		{"Redis", "Database"},
		{"React", "Framework"},
		{"Angular", "Framework"},
		{"Vue", "Framework"},
		{"Node.js", "Framework"},
		{"Django", "Framework"},
		{"Flask", "Framework"},
		{"Spring", "Framework"},
		{"Docker", "DevOps"},
		{"Kubernetes", "DevOps"},
		{"Terraform", "DevOps"},
		{"CI/CD", "DevOps"},
		{"Git", "DevOps"},
		{"Linux", "DevOps"},
		{"AWS", "Cloud"},
		{"GCP", "Cloud"},
		{"Azure", "Cloud"},
		{"GraphQL", "API"},
		{"REST", "API"},
		{"gRPC", "API"},
		{"Kafka", "Messaging"},
		{"RabbitMQ", "Messaging"},
		{"Machine Learning", "Data"},
		{"Pandas", "Data"},
		{"TensorFlow", "Data"},
	}

	out := make([]Skill, 0, len(items))
	for _, it := range items {
		out = append(out, Skill{Name: it.name, Category: it.category})
	}
	return out
}
