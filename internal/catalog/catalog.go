// Package catalog holds the ordered SQL sequences that provision and load the
// star schema: the staging tables fed by COPY, the users_max_ts helper, the
// users/songs/artists/time dimensions and the songplays fact table.
package catalog

import (
	"fmt"
	"strings"

	"dwhload/pkg/models"
)

// SequenceName identifies one of the four statement sequences
type SequenceName string

const (
	SequenceDrop   SequenceName = "drop"
	SequenceCreate SequenceName = "create"
	SequenceCopy   SequenceName = "copy"
	SequenceInsert SequenceName = "insert"
)

// SequenceNames lists the sequences in the order a full rebuild runs them
var SequenceNames = []SequenceName{SequenceDrop, SequenceCreate, SequenceCopy, SequenceInsert}

// Statement is one fully resolved SQL statement
type Statement struct {
	Name  string `yaml:"name"`
	Table string `yaml:"table"`
	SQL   string `yaml:"sql"`
}

// Catalog groups the resolved statements by sequence
type Catalog struct {
	Drop   []Statement `yaml:"drop"`
	Create []Statement `yaml:"create"`
	Copy   []Statement `yaml:"copy"`
	Insert []Statement `yaml:"insert"`
}

// New resolves every statement against cfg. Only the COPY statements depend on it.
func New(cfg *models.Config) (*Catalog, error) {
	inserts, err := insertStatements()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert statements: %w", err)
	}

	return &Catalog{
		Drop:   dropStatements(),
		Create: createStatements(),
		Copy:   copyStatements(cfg.IAMRole.ARN, cfg.S3),
		Insert: inserts,
	}, nil
}

// NewRedacted is New with the IAM role account id masked, for display
func NewRedacted(cfg *models.Config) (*Catalog, error) {
	masked := *cfg
	masked.IAMRole.ARN = MaskARN(cfg.IAMRole.ARN)
	return New(&masked)
}

// Sequence returns the statements of the named sequence
func (c *Catalog) Sequence(name SequenceName) ([]Statement, error) {
	switch name {
	case SequenceDrop:
		return c.Drop, nil
	case SequenceCreate:
		return c.Create, nil
	case SequenceCopy:
		return c.Copy, nil
	case SequenceInsert:
		return c.Insert, nil
	}
	return nil, fmt.Errorf("unknown sequence %q (want one of drop, create, copy, insert)", name)
}

// ParseSequenceName validates a user supplied sequence name
func ParseSequenceName(s string) (SequenceName, error) {
	name := SequenceName(strings.ToLower(strings.TrimSpace(s)))
	for _, n := range SequenceNames {
		if n == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown sequence %q (want one of drop, create, copy, insert)", s)
}

// MaskARN hides the account id of an IAM ARN
func MaskARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) != 6 || parts[0] != "arn" {
		return strings.Repeat("*", 8)
	}
	parts[4] = strings.Repeat("*", len(parts[4]))
	return strings.Join(parts, ":")
}
