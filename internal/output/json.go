package output

import (
	"encoding/json"

	"dbplat/internal/core"
	"dbplat/internal/detect"
)

type jsonFormatter struct{}

type identityPayload struct {
	Format   string          `json:"format"`
	Identity detect.Identity `json:"identity"`
}

type platformsPayload struct {
	Format    string         `json:"format"`
	Platforms []PlatformInfo `json:"platforms"`
}

type schemaSummary struct {
	Tables      int `json:"tables"`
	Columns     int `json:"columns"`
	Constraints int `json:"constraints"`
	Indexes     int `json:"indexes"`
	Triggers    int `json:"triggers"`
	Sequences   int `json:"sequences"`
}

type schemaPayload struct {
	Format   string         `json:"format"`
	Summary  schemaSummary  `json:"summary"`
	Database *core.Database `json:"database"`
}

type ddlPayload struct {
	Format     string   `json:"format"`
	Platform   string   `json:"platform"`
	Statements []string `json:"statements"`
}

type Payload interface {
	identityPayload | platformsPayload | schemaPayload | ddlPayload
}

func (jsonFormatter) FormatIdentity(id detect.Identity) (string, error) {
	return marshalJSON(identityPayload{Format: string(FormatJSON), Identity: id})
}

func (jsonFormatter) FormatPlatforms(infos []PlatformInfo) (string, error) {
	if infos == nil {
		infos = []PlatformInfo{}
	}
	return marshalJSON(platformsPayload{Format: string(FormatJSON), Platforms: infos})
}

func (jsonFormatter) FormatSchema(db *core.Database) (string, error) {
	payload := schemaPayload{Format: string(FormatJSON), Database: db}
	if db != nil {
		payload.Summary = summarize(db)
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatDDL(platform string, statements []string) (string, error) {
	stmts := normalizeStatements(statements)
	if stmts == nil {
		stmts = []string{}
	}
	return marshalJSON(ddlPayload{Format: string(FormatJSON), Platform: platform, Statements: stmts})
}

func summarize(db *core.Database) schemaSummary {
	s := schemaSummary{Tables: len(db.Tables), Sequences: len(db.Sequences)}
	for _, t := range db.Tables {
		s.Columns += len(t.Columns)
		s.Constraints += len(t.Constraints)
		s.Indexes += len(t.Indexes)
		s.Triggers += len(t.Triggers)
	}
	return s
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
