package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"alfredoptarigan/resume-match-bot/internal/config"
	"alfredoptarigan/resume-match-bot/internal/services"
)

// Ingests the scoring-guideline PDFs into Qdrant so the orchestrator can
// ground its dimension prompts. Run once per rubric revision:
//
//	go run scripts/ingest_rubrics.go
func main() {
	log.Println("🚀 Starting rubric ingestion...")

	cfg := config.Load()

	if !cfg.QdrantEnabled() {
		log.Fatal("❌ QDRANT_URL is required for rubric ingestion")
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.RequestsPerMinute)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()

	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	extractor := services.NewExtractorService()
	chunker := services.NewChunkerService()

	rubrics := []struct {
		Path      string
		Dimension string
		Name      string
	}{
		{
			Path:      "./rubric_docs/headline_guidelines.pdf",
			Dimension: "headline",
			Name:      "Title and Headline Scoring Guidelines",
		},
		{
			Path:      "./rubric_docs/skills_guidelines.pdf",
			Dimension: "skills",
			Name:      "Skills Overlap Scoring Guidelines",
		},
		{
			Path:      "./rubric_docs/experience_guidelines.pdf",
			Dimension: "experience",
			Name:      "Experience and Seniority Scoring Guidelines",
		},
		{
			Path:      "./rubric_docs/job_conditions_guidelines.pdf",
			Dimension: "job_conditions",
			Name:      "Conditions and Logistics Scoring Guidelines",
		},
	}

	successCount := 0
	failCount := 0

	for _, rubric := range rubrics {
		log.Printf("\n📄 Processing: %s", rubric.Name)
		log.Printf("   Path: %s", rubric.Path)
		log.Printf("   Dimension: %s", rubric.Dimension)

		data, err := os.ReadFile(rubric.Path)
		if err != nil {
			log.Printf("   ⚠️  Could not read file, skipping: %v", err)
			failCount++
			continue
		}

		log.Printf("   📖 Extracting text...")
		text := services.CleanText(extractor.ExtractText(data, "application/pdf"))
		if len(text) < 200 {
			log.Printf("   ❌ Extraction produced almost no text, skipping")
			failCount++
			continue
		}
		log.Printf("   ✅ Extracted %d pages, %d characters", services.PageCount(data), len(text))

		log.Printf("   ✂️  Chunking text...")
		chunks := chunker.Chunk(text, 1000, 200)
		log.Printf("   ✅ Created %d chunks", len(chunks))

		log.Printf("   🔄 Embedding and storing chunks...")
		stored := 0
		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("   ❌ Failed to embed chunk %d: %v", i+1, err)
				continue
			}

			// Point ids are random, so clear the copy a previous run stored
			// under this rubric id before writing the new one.
			rubricID := fmt.Sprintf("%s_chunk_%d", rubric.Dimension, i)
			if err := qdrantService.DeleteRubric(ctx, rubricID); err != nil {
				log.Printf("   ⚠️  Could not clear previous chunk %d: %v", i+1, err)
			}
			if err := qdrantService.UpsertRubricChunk(ctx, rubricID, rubric.Dimension, chunk, embedding); err != nil {
				log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
				continue
			}

			stored++
			if stored%5 == 0 || i == len(chunks)-1 {
				log.Printf("   📊 Progress: %d/%d chunks stored", stored, len(chunks))
			}
		}

		if stored == 0 {
			log.Printf("   ❌ No chunks stored for %s", rubric.Name)
			failCount++
			continue
		}

		log.Printf("   ✅ Successfully ingested %s", rubric.Name)
		successCount++
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d rubrics", successCount)
	log.Printf("   ❌ Failed: %d rubrics", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some rubrics failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All rubrics ingested successfully!")
}
