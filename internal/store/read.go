package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/systolic/internal/hardware"
)

// ReadProgram loads a stored program by fingerprint. Passes are returned in
// pass_id order. Returns sql.ErrNoRows if the program does not exist.
func (s *Store) ReadProgram(ctx context.Context, id string) (*hardware.Program, error) {
	var p hardware.Program
	err := s.db.QueryRowContext(ctx, `
		SELECT array_size, data_width, acc_width, output_rows, output_cols, total_cycles, summary
		FROM programs
		WHERE id = ?
	`, id).Scan(
		&p.Config.ArraySize,
		&p.Config.DataWidth,
		&p.Config.AccWidth,
		&p.OutputShape.Rows,
		&p.OutputShape.Cols,
		&p.TotalCycles,
		&p.Summary,
	)
	if err != nil {
		return nil, fmt.Errorf("read program %s: %w", id, err)
	}

	passes, err := s.readPasses(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Passes = passes
	return &p, nil
}

func (s *Store) readPasses(ctx context.Context, programID string) ([]hardware.Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pass_id, description, operation, matrix_a, a_rows, a_cols, matrix_b, b_rows, b_cols,
		       out_rows, out_cols, tile_row, tile_col, start_row, start_col
		FROM passes
		WHERE program_id = ?
		ORDER BY pass_id ASC
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	passes := []hardware.Pass{}
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

func scanPass(rows *sql.Rows) (hardware.Pass, error) {
	var (
		pass hardware.Pass
		op   string
		a, b string
	)
	err := rows.Scan(
		&pass.ID,
		&pass.Description,
		&op,
		&a, &pass.AShape.Rows, &pass.AShape.Cols,
		&b, &pass.BShape.Rows, &pass.BShape.Cols,
		&pass.OutputShape.Rows, &pass.OutputShape.Cols,
		&pass.OutputTile.TileRow, &pass.OutputTile.TileCol,
		&pass.OutputTile.StartRow, &pass.OutputTile.StartCol,
	)
	if err != nil {
		return hardware.Pass{}, fmt.Errorf("scan pass: %w", err)
	}

	if pass.Operation, err = parseOperation(op); err != nil {
		return hardware.Pass{}, err
	}
	if pass.MatrixA, err = unmarshalBuffer(a); err != nil {
		return hardware.Pass{}, err
	}
	if pass.MatrixB, err = unmarshalBuffer(b); err != nil {
		return hardware.Pass{}, err
	}
	return pass, nil
}

// ListCompilations returns every recorded compilation run in seq order.
// If programID is non-empty only runs of that program are returned.
func (s *Store) ListCompilations(ctx context.Context, programID string) ([]Compilation, error) {
	query := `
		SELECT run_id, program_id, name, source, seq
		FROM compilations
		ORDER BY seq ASC
	`
	args := []any{}
	if programID != "" {
		query = `
		SELECT run_id, program_id, name, source, seq
		FROM compilations
		WHERE program_id = ?
		ORDER BY seq ASC
	`
		args = append(args, programID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	runs := []Compilation{}
	for rows.Next() {
		var c Compilation
		if err := rows.Scan(&c.RunID, &c.ProgramID, &c.Name, &c.Source, &c.Seq); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		runs = append(runs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return runs, nil
}

// ProgramInfo is a stored program's header row.
type ProgramInfo struct {
	ID          string
	Config      hardware.Config
	PassCount   int
	TotalCycles int
}

// ListPrograms returns the header of every stored program ordered by the
// seq of its first compilation.
func (s *Store) ListPrograms(ctx context.Context) ([]ProgramInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.array_size, p.data_width, p.acc_width, p.pass_count, p.total_cycles
		FROM programs p
		JOIN (SELECT program_id, MIN(seq) AS first_seq FROM compilations GROUP BY program_id) c
		  ON c.program_id = p.id
		ORDER BY c.first_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	infos := []ProgramInfo{}
	for rows.Next() {
		var info ProgramInfo
		if err := rows.Scan(&info.ID, &info.Config.ArraySize, &info.Config.DataWidth, &info.Config.AccWidth,
			&info.PassCount, &info.TotalCycles); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return infos, nil
}
