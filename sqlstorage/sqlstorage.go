// Package sqlstorage mirrors scraped paper records into MySQL so the
// proceedings can be queried alongside other local datasets. Rows are
// buffered and flushed in batches.
package sqlstorage

import (
	"strings"
	"time"

	"github.com/jacow-mirror/srfcrawl/proceedings"
	"github.com/jacow-mirror/srfcrawl/sqldb"
	"go.uber.org/zap"
)

const papersTable = "srf2019_papers"

// PaperRepository receives finished paper records. The engine writes to it
// but never reads back; a no-op implementation disables the export.
type PaperRepository interface {
	Save(sessionName string, papers ...proceedings.Paper) error
	Flush() error
}

// EmptyRepository discards everything. Used when no storage is configured.
type EmptyRepository struct{}

func (EmptyRepository) Save(string, ...proceedings.Paper) error { return nil }
func (EmptyRepository) Flush() error                            { return nil }

type row struct {
	sessionName string
	paper       proceedings.Paper
}

type SQLStorage struct {
	buffer  []row
	db      sqldb.DBer
	created bool
	options
}

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &SQLStorage{}
	s.options = options

	var err error
	s.db, err = sqldb.New(
		sqldb.WithConnURL(s.sqlURL),
		sqldb.WithLogger(s.logger),
	)

	if err != nil {
		return nil, err
	}

	return s, nil
}

var paperColumns = []sqldb.Field{
	{Title: "session_name", Type: "VARCHAR(255)"},
	{Title: "paper_id", Type: "VARCHAR(32)"},
	{Title: "title", Type: "MEDIUMTEXT"},
	{Title: "authors", Type: "MEDIUMTEXT"},
	{Title: "institutions", Type: "MEDIUMTEXT"},
	{Title: "abstract", Type: "MEDIUMTEXT"},
	{Title: "page_number", Type: "VARCHAR(8)"},
	{Title: "presentation_url", Type: "VARCHAR(255)"},
	{Title: "presentation_available", Type: "TINYINT(1)"},
	{Title: "paper_url", Type: "VARCHAR(255)"},
	{Title: "paper_available", Type: "TINYINT(1)"},
	{Title: "poster_url", Type: "VARCHAR(255)"},
	{Title: "poster_available", Type: "TINYINT(1)"},
	{Title: "doi", Type: "VARCHAR(255)"},
	{Title: "scraped_at", Type: "VARCHAR(32)"},
}

// Save buffers papers for insertion, flushing when the batch fills up.
func (s *SQLStorage) Save(sessionName string, papers ...proceedings.Paper) error {
	if !s.created {
		if err := s.db.CreateTable(sqldb.TableData{
			TableName:   papersTable,
			ColumnNames: paperColumns,
			AutoKey:     true,
		}); err != nil {
			s.logger.Error("create table failed", zap.Error(err))
			return err
		}
		s.created = true
	}

	for _, p := range papers {
		if len(s.buffer) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				s.logger.Error("insert data failed", zap.Error(err))
			}
		}
		s.buffer = append(s.buffer, row{sessionName: sessionName, paper: p})
	}

	return nil
}

func (s *SQLStorage) Flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	defer func() {
		s.buffer = nil
	}()

	now := time.Now().Format("2006-01-02 15:04:05")

	args := make([]interface{}, 0, len(s.buffer)*len(paperColumns))
	for _, r := range s.buffer {
		p := r.paper
		args = append(args,
			r.sessionName,
			p.PaperID,
			p.Title,
			strings.Join(p.Authors, "; "),
			strings.Join(p.Institutions, "; "),
			p.Abstract,
			p.PageNumber,
			p.TalkURL, boolArg(p.TalkAvailable),
			p.PaperURL, boolArg(p.PaperAvailable),
			p.PosterURL, boolArg(p.PosterAvailable),
			p.DOI,
			now,
		)
	}

	return s.db.Insert(sqldb.TableData{
		TableName:   papersTable,
		ColumnNames: paperColumns,
		Args:        args,
		DataCount:   len(s.buffer),
	})
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}
