package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
)

// Compilation is one recorded compilation run.
type Compilation struct {
	RunID     string
	ProgramID string
	Name      string
	Source    string
	Seq       int64
}

// WriteProgram stores p under its fingerprint and appends a compilation
// record for this run. A program that is already stored is not rewritten;
// the run is still recorded. Everything happens in one transaction.
func (s *Store) WriteProgram(ctx context.Context, p *hardware.Program, name, source string) (Compilation, error) {
	id, err := p.Fingerprint()
	if err != nil {
		return Compilation{}, fmt.Errorf("write program: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Compilation{}, fmt.Errorf("write program: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO programs
		(id, array_size, data_width, acc_width, output_rows, output_cols, total_cycles, pass_count, summary, format_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		p.Config.ArraySize,
		p.Config.DataWidth,
		p.Config.AccWidth,
		p.OutputShape.Rows,
		p.OutputShape.Cols,
		p.TotalCycles,
		len(p.Passes),
		p.Summary,
		ir.FormatVersion,
	)
	if err != nil {
		return Compilation{}, fmt.Errorf("write program: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return Compilation{}, fmt.Errorf("write program: %w", err)
	}
	if inserted == 1 {
		for _, pass := range p.Passes {
			if err := writePass(ctx, tx, id, pass); err != nil {
				return Compilation{}, err
			}
		}
	}

	c := Compilation{
		RunID:     s.runIDs.Generate(),
		ProgramID: id,
		Name:      name,
		Source:    source,
	}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM compilations`).Scan(&c.Seq); err != nil {
		return Compilation{}, fmt.Errorf("write compilation: next seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO compilations (run_id, program_id, name, source, seq)
		VALUES (?, ?, ?, ?, ?)
	`, c.RunID, c.ProgramID, c.Name, c.Source, c.Seq); err != nil {
		return Compilation{}, fmt.Errorf("write compilation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Compilation{}, fmt.Errorf("write program: commit: %w", err)
	}
	return c, nil
}

func writePass(ctx context.Context, tx *sql.Tx, programID string, pass hardware.Pass) error {
	a, err := marshalBuffer(pass.MatrixA)
	if err != nil {
		return fmt.Errorf("write pass %d: %w", pass.ID, err)
	}
	b, err := marshalBuffer(pass.MatrixB)
	if err != nil {
		return fmt.Errorf("write pass %d: %w", pass.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO passes
		(program_id, pass_id, description, operation, matrix_a, a_rows, a_cols, matrix_b, b_rows, b_cols,
		 out_rows, out_cols, tile_row, tile_col, start_row, start_col)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		programID,
		pass.ID,
		pass.Description,
		pass.Operation.String(),
		a, pass.AShape.Rows, pass.AShape.Cols,
		b, pass.BShape.Rows, pass.BShape.Cols,
		pass.OutputShape.Rows, pass.OutputShape.Cols,
		pass.OutputTile.TileRow, pass.OutputTile.TileCol,
		pass.OutputTile.StartRow, pass.OutputTile.StartCol,
	)
	if err != nil {
		return fmt.Errorf("write pass %d: %w", pass.ID, err)
	}
	return nil
}
