package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"code-mentor/api/internal/hint"
	"code-mentor/api/internal/util"
)

var ErrNotFound = sql.ErrNoRows

const hintSchema = `
create table if not exists hint_history (
	id            bigserial primary key,
	created_at    timestamptz not null default now(),
	session_id    text not null default '',
	code_hash     text not null,
	problem       text not null default '',
	language      text not null default '',
	engine        text not null,
	model         text not null,
	response_json jsonb not null
);
create index if not exists hint_history_lookup on hint_history (code_hash, engine, model, created_at desc);
create index if not exists hint_history_session on hint_history (session_id, created_at desc);`

type HintRepo struct{ DB *sql.DB }

func NewHintRepo(db *sql.DB) *HintRepo { return &HintRepo{DB: db} }

// HintRow - одна сохранённая выдача подсказок.
type HintRow struct {
	ID        int64         `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	SessionID string        `json:"session_id"`
	CodeHash  string        `json:"code_hash"`
	Problem   string        `json:"problem"`
	Language  string        `json:"language"`
	Engine    string        `json:"engine"`
	Model     string        `json:"model"`
	Response  hint.Response `json:"response"`
}

// CodeHash - ключ кэша: задача + язык + код + вывод.
func CodeHash(req hint.Request) string {
	return util.SHA256Hex(req.Problem.Name, req.Language, req.UserCode, req.CodeOutput)
}

func (r *HintRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, hintSchema); err != nil {
		return fmt.Errorf("hint_history schema: %w", err)
	}
	return nil
}

func (r *HintRepo) Insert(ctx context.Context, row HintRow) error {
	js, err := json.Marshal(row.Response)
	if err != nil {
		return fmt.Errorf("marshal hint response: %w", err)
	}
	const q = `
insert into hint_history(session_id, code_hash, problem, language, engine, model, response_json)
values ($1,$2,$3,$4,$5,$6,$7)`
	_, err = r.DB.ExecContext(ctx, q, row.SessionID, row.CodeHash, row.Problem, row.Language, row.Engine, row.Model, js)
	return err
}

// FindFresh возвращает последнюю выдачу для (codeHash, engine, model).
// Если maxAge > 0 и запись старше, вернёт ErrNotFound (чтобы вызвать LLM заново).
func (r *HintRepo) FindFresh(ctx context.Context, codeHash, engine, model string, maxAge time.Duration) (hint.Response, error) {
	const q = `
select response_json, created_at
from hint_history
where code_hash=$1 and engine=$2 and model=$3
order by created_at desc
limit 1`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, codeHash, engine, model).Scan(&js, &ts); err != nil {
		return hint.Response{}, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return hint.Response{}, ErrNotFound
	}
	var resp hint.Response
	if err := json.Unmarshal(js, &resp); err != nil {
		// битый кэш - считаем, что записи нет
		return hint.Response{}, ErrNotFound
	}
	return resp, nil
}

// Recent - последние выдачи сессии, новые первыми.
func (r *HintRepo) Recent(ctx context.Context, sessionID string, limit int) ([]HintRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `
select id, created_at, session_id, code_hash, problem, language, engine, model, response_json
from hint_history
where session_id=$1
order by created_at desc, id desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HintRow, 0, limit)
	for rows.Next() {
		var (
			row HintRow
			js  []byte
		)
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.SessionID, &row.CodeHash, &row.Problem,
			&row.Language, &row.Engine, &row.Model, &js); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(js, &row.Response); err != nil {
			return nil, fmt.Errorf("hint_history %d: %w", row.ID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
