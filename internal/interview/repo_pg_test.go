package interview

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoLoadDecodesSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	payload := []byte(`{"candidates":[{"id":"c1","name":"Jane Doe","email":"j@x.c","phone":"1","session":{"qIdx":0,"answers":[]}}],"pendingScores":[]}`)
	rows := sqlmock.NewRows([]string{"data"}).AddRow(payload)
	mock.ExpectQuery(`SELECT data`).WithArgs(snapshotKey).WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	snap, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected snapshot present")
	}
	if len(snap.Candidates) != 1 || snap.Candidates[0].ID != "c1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Candidates[0].Session.Stage != StageInterview {
		t.Fatalf("expected normalized stage, got %s", snap.Candidates[0].Session.Stage)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoLoadMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT data`).WithArgs(snapshotKey).WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	_, ok, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("missing row must not error: %v", err)
	}
	if ok {
		t.Fatalf("expected no snapshot")
	}
}

func TestPGRepoSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	snap := Snapshot{
		Candidates:    []*Candidate{{ID: "c1", Name: "Jane Doe", Session: newSession()}},
		PendingScores: []PendingScore{{CandidateID: "c1", AnswerIndex: 2}},
	}
	expected, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mock.ExpectExec(`INSERT INTO interview_snapshots`).
		WithArgs(snapshotKey, expected).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
