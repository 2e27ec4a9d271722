package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wallarm/namematch"
)

var (
	buildCSVPath string
	buildOverwrite bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the name-match index from a CSV corpus",
		RunE:  runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildCSVPath, "input", "i", "", "CSV file with columns entity_id,name_id_guid,name (required)")
	buildCmd.Flags().BoolVar(&buildOverwrite, "overwrite", false, "replace an existing index")
	_ = buildCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	fc, err := loadFileConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	raw, err := readRawRecords(buildCSVPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", buildCSVPath, err)
	}

	eng, err := namematch.NewEngine(fc.engineConfig(buildOverwrite), defaultCleaner, defaultDistancer)
	if err != nil {
		return err
	}
	defer eng.Close()

	report, err := eng.Build(context.Background(), raw)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"raw_rows_seen":           report.RawRowsSeen,
		"raw_rows_deduped":        report.RawRowsDeduped,
		"raw_rows_skipped":        report.RawRowsSkippedCorrupt,
		"raw_rows_skipped_uuid":   rowsSkippedInvalidUUID,
		"names_indexed":           report.NamesIndexed,
		"words_indexed":           report.WordsIndexed,
		"neighborhood_entries":    report.NeighborhoodEntriesWritten,
		"phonetic_entries":        report.PhoneticEntriesWritten,
		"elapsed":                 report.Elapsed,
	}).Info("build finished")
	return nil
}

// rowsSkippedInvalidUUID counts CSV rows readRawRecords rejected because
// entity_id or name_id_guid did not parse as a UUID. Set fresh by each
// call to readRawRecords.
var rowsSkippedInvalidUUID int

// readRawRecords parses the required entity_id,name_id_guid,name CSV
// columns, skipping the header row. A row whose entity_id or
// name_id_guid does not parse as a UUID is a source-corrupt row: it is
// dropped here (counted in rowsSkippedInvalidUUID) rather than handed
// to Build, which has no way to tell a malformed identifier from a
// deliberately non-UUID one. Other malformed rows are left for Build's
// own corrupt-row accounting, so only a missing file or a structurally
// broken CSV fails here.
func readRawRecords(path string) ([]namematch.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != 3 {
		return nil, errors.New("expected columns entity_id,name_id_guid,name")
	}

	rowsSkippedInvalidUUID = 0
	var out []namematch.RawRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !validateUUIDLike(row[0]) || !validateUUIDLike(row[1]) {
			logrus.WithFields(logrus.Fields{
				"entity_id":    row[0],
				"name_id_guid": row[1],
			}).Warn("row skipped: entity_id or name_id_guid does not parse as a UUID")
			rowsSkippedInvalidUUID++
			continue
		}
		out = append(out, namematch.RawRecord{
			EntityID:   row[0],
			NameIDGUID: row[1],
			Name:       row[2],
		})
	}
	return out, nil
}
