package service

import (
	"context"
	"errors"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/model"
	"sudooom.boba/internal/protocol"
	"sudooom.boba/internal/repository"
	"sudooom.boba/internal/session"
	appErrors "sudooom.boba/pkg/errors"
)

// SnapshotLoader 读取缓存中的对局快照
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, gameID string) (*protocol.Snapshot, error)
}

// ResultReader 读取已结束对局的结果
type ResultReader interface {
	Get(ctx context.Context, gameID string) (*model.GameResult, error)
	ListRecent(ctx context.Context, limit int) ([]*model.GameResult, error)
}

// GameService 对局查询
// 本进程内的对局直接读会话，其他对局读缓存快照
type GameService struct {
	sessions  *session.Manager
	snapshots SnapshotLoader
	results   ResultReader
}

// NewGameService 创建查询服务，snapshots 与 results 可为空
func NewGameService(sessions *session.Manager, snapshots SnapshotLoader, results ResultReader) *GameService {
	return &GameService{sessions: sessions, snapshots: snapshots, results: results}
}

// Snapshot 对局公开快照
func (s *GameService) Snapshot(ctx context.Context, gameID string) (*protocol.Snapshot, error) {
	if sess, ok := s.sessions.Get(gameID); ok {
		return sess.Snapshot(), nil
	}
	if s.snapshots == nil {
		return nil, appErrors.ErrGameNotFound
	}
	return s.snapshots.LoadSnapshot(ctx, gameID)
}

// Scores 按公开信息计算的当前得分，对局结束后就是最终得分
func (s *GameService) Scores(ctx context.Context, gameID string) ([]protocol.FinalScore, error) {
	snap, err := s.Snapshot(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if snap.Ended != nil {
		return snap.Ended.FinalScores, nil
	}

	scores := make([]protocol.FinalScore, len(snap.PlayersPublic))
	for i, p := range snap.PlayersPublic {
		breakdown := engine.ScorePlayer(i, snap.PlayersPublic)
		scores[i] = protocol.FinalScore{PlayerID: p.ID, Name: p.Name, Score: breakdown.Total, Breakdown: breakdown}
	}
	return scores, nil
}

// Result 已结束对局的结果
func (s *GameService) Result(ctx context.Context, gameID string) (*model.GameResult, error) {
	if s.results == nil {
		return nil, appErrors.ErrGameNotFound
	}
	result, err := s.results.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			return nil, appErrors.ErrGameNotFound
		}
		return nil, appErrors.ErrDBError.Wrap(err)
	}
	return result, nil
}

// RecentResults 最近结束的对局
func (s *GameService) RecentResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	if s.results == nil {
		return nil, nil
	}
	results, err := s.results.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.ErrDBError.Wrap(err)
	}
	return results, nil
}

// PlayerView 玩家自己的对局视图（含手牌），调用方需先校验座位
func (s *GameService) PlayerView(gameID string, playerID int) (*protocol.GameUpdate, error) {
	sess, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, appErrors.ErrGameNotFound
	}
	return sess.Update(playerID)
}
