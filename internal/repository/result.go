package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.boba/internal/model"
	"sudooom.boba/internal/protocol"
)

var ErrResultNotFound = errors.New("game result not found")

//go:embed schema.sql
var schemaSQL string

// GameResultRepository 已结束对局的结果账本
type GameResultRepository struct {
	db *pgxpool.Pool
}

// NewGameResultRepository 创建结果仓库
func NewGameResultRepository(db *pgxpool.Pool) *GameResultRepository {
	return &GameResultRepository{db: db}
}

// Migrate 创建表结构（可重复执行）
func (r *GameResultRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schemaSQL)
	return err
}

// SaveResult 在一个事务里写入对局和每个玩家的得分，同一对局重复写入时忽略
// 种子按十进制文本保存，uint64 放不进 BIGINT
func (r *GameResultRepository) SaveResult(ctx context.Context, result *model.GameResult) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var reasonPlayer *int
	if result.Reason.PlayerID != nil {
		p := *result.Reason.PlayerID
		reasonPlayer = &p
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO game_results (game_id, seed, round_count, reason_kind, reason_player, reason_detail, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id) DO NOTHING
	`,
		result.GameID,
		strconv.FormatUint(result.Seed, 10),
		result.RoundCount,
		string(result.Reason.Kind),
		reasonPlayer,
		result.Reason.Detail,
		result.FinishedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range result.Scores {
		breakdown, err := json.Marshal(s.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal breakdown: %w", err)
		}
		batch.Queue(`
			INSERT INTO game_result_players (game_id, player_id, name, score, breakdown)
			VALUES ($1, $2, $3, $4, $5)
		`, result.GameID, s.PlayerID, s.Name, s.Score, breakdown)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Get 读取一局结果
func (r *GameResultRepository) Get(ctx context.Context, gameID string) (*model.GameResult, error) {
	query := `
		SELECT game_id, seed, round_count, reason_kind, reason_player, reason_detail, finished_at
		FROM game_results WHERE game_id = $1
	`
	result, err := scanResult(r.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}

	if err := r.loadScores(ctx, []*model.GameResult{result}); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRecent 最近结束的对局，按结束时间倒序
func (r *GameResultRepository) ListRecent(ctx context.Context, limit int) ([]*model.GameResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
		SELECT game_id, seed, round_count, reason_kind, reason_player, reason_detail, finished_at
		FROM game_results
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*model.GameResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadScores(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// loadScores 一次查询补齐多局的玩家得分
func (r *GameResultRepository) loadScores(ctx context.Context, results []*model.GameResult) error {
	if len(results) == 0 {
		return nil
	}
	byID := make(map[string]*model.GameResult, len(results))
	ids := make([]string, 0, len(results))
	for _, res := range results {
		byID[res.GameID] = res
		ids = append(ids, res.GameID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT game_id, player_id, name, score, breakdown
		FROM game_result_players
		WHERE game_id = ANY($1)
		ORDER BY game_id, player_id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			gameID    string
			score     protocol.FinalScore
			breakdown []byte
		)
		if err := rows.Scan(&gameID, &score.PlayerID, &score.Name, &score.Score, &breakdown); err != nil {
			return err
		}
		if err := json.Unmarshal(breakdown, &score.Breakdown); err != nil {
			return fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
		if res, ok := byID[gameID]; ok {
			res.Scores = append(res.Scores, score)
		}
	}
	return rows.Err()
}

func scanResult(row pgx.Row) (*model.GameResult, error) {
	var (
		result       model.GameResult
		seed         string
		reasonKind   string
		reasonPlayer *int
	)
	err := row.Scan(
		&result.GameID,
		&seed,
		&result.RoundCount,
		&reasonKind,
		&reasonPlayer,
		&result.Reason.Detail,
		&result.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	result.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed %q: %w", seed, err)
	}
	result.Reason.Kind = protocol.EndReasonKind(reasonKind)
	result.Reason.PlayerID = reasonPlayer
	return &result, nil
}
