package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object an extraction prompt asks for.
type ExtractionSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string
	Type        string // type hint shown to the model, e.g. "string" or "[\"string\"]"
	Description string
	Required    bool
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent details.\n")
	sb.WriteString("- Use an empty string or empty list when the text does not say.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// JobSpecSchema extracts the fields of a Job row from a raw posting.
func JobSpecSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "JobSpec",
		Description: "You are a recruiting assistant reading a job posting. Pull out the role and what it asks of candidates.",
		Fields: []SchemaField{
			{Name: "title", Description: "Job title as written", Required: true},
			{Name: "company", Description: "Hiring company name"},
			{Name: "location", Description: "Office location or Remote"},
			{Name: "requirements", Type: `["string"]`, Description: "Each requirement or qualification, one per item", Required: true},
			{Name: "summary", Description: "Two sentence summary of the role"},
		},
	}
}

// CandidateProfileSchema extracts the fields of a Candidate row from a
// resume or profile text.
func CandidateProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "CandidateProfile",
		Description: "You are a recruiting assistant reading a candidate profile. Pull out who they are and what they can do.",
		Fields: []SchemaField{
			{Name: "name", Description: "Full name", Required: true},
			{Name: "email", Description: "Email address"},
			{Name: "linkedin_url", Description: "LinkedIn profile URL"},
			{Name: "skills", Type: `["string"]`, Description: "Technical and domain skills, one per item", Required: true},
			{Name: "location", Description: "Preferred work location"},
			{Name: "industries", Type: `["string"]`, Description: "Industries the candidate wants to work in"},
		},
	}
}
