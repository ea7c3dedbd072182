// Package render 本地热座模式的文本视图
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/protocol"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// Status 轮次、回合、传牌方向与提交状态
func Status(w io.Writer, status engine.GameStatus) {
	fmt.Fprintf(w, "Round %d/%d  Turn %d  Passing %s\n",
		status.Round, status.RoundCount, status.Turn, status.PassDirection)
	if status.IsGameOver {
		fmt.Fprintln(w, "Game over")
	}
}

// Hand 带编号的手牌，编号用于输入选择
func Hand(w io.Writer, hand engine.Cards, limit int) {
	fmt.Fprintf(w, "Your hand (select up to %d):\n", limit)
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tCARD\tQTY\tPTS\tEFFECT")
	for i, kind := range hand.Kinds() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, kind.Name(), hand[kind], kind.Score(), kind.Description())
	}
	tw.Flush()
}

// Players 所有玩家的公开卡牌
func Players(w io.Writer, players []engine.PlayerPublic, turnStates []engine.PlayerTurnState) {
	tw := newTable(w)
	fmt.Fprintln(tw, "PLAYER\tSTATE\tPUBLIC\tBOOSTED")
	for i, p := range players {
		state := ""
		if i < len(turnStates) {
			state = string(turnStates[i])
		}
		fmt.Fprintf(tw, "%d %s\t%s\t%s\t%s\n", p.ID, p.Name, state, cardList(p.Public), cardList(p.Boosted))
	}
	tw.Flush()
}

// Update 单个玩家的完整视图
func Update(w io.Writer, u *protocol.GameUpdate) {
	Status(w, u.GameStatus)
	Players(w, u.PlayersPublic, u.GameStatus.PlayerTurnStates)
	fmt.Fprintln(w)
	Hand(w, u.Hand, u.SelectionLimit)
}

// Scores 最终得分与明细
func Scores(w io.Writer, ended *protocol.GameEnded) {
	fmt.Fprintf(w, "Game ended: %s\n", ended.Reason.String())
	for _, s := range ended.FinalScores {
		fmt.Fprintf(w, "\n%s (player %d): %s\n", s.Name, s.PlayerID, formatPoints(s.Score))
		tw := newTable(w)
		for _, c := range s.Breakdown.Categories {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Category, formatPoints(c.Points))
		}
		tw.Flush()
	}
}

func cardList(cards engine.Cards) string {
	if cards.IsEmpty() {
		return "-"
	}
	parts := make([]string, 0, len(cards))
	for _, kind := range cards.Kinds() {
		parts = append(parts, fmt.Sprintf("%s x%d", kind.Name(), cards[kind]))
	}
	return strings.Join(parts, ", ")
}

// formatPoints 整数分不带小数，珍珠平分时保留两位
func formatPoints(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
