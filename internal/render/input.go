package render

import (
	"fmt"
	"strconv"
	"strings"

	"sudooom.boba/internal/engine"
)

// ParseSelection 解析玩家输入，按 Hand 输出的编号或卡牌编码选牌
// 例如 "1 3" 或 "thai_tea,mango_tea"，同一编号出现两次表示选两张
func ParseSelection(input string, hand engine.Cards) (selected, remaining engine.Cards, err error) {
	kinds := hand.Kinds()
	selected = make(engine.Cards)

	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' })
	for _, f := range fields {
		kind, err := resolve(f, kinds)
		if err != nil {
			return nil, nil, err
		}
		selected.Add(kind, 1)
	}

	remaining = hand.Clone()
	for _, kind := range selected.Kinds() {
		if !remaining.Remove(kind, selected[kind]) {
			return nil, nil, fmt.Errorf("not enough %s in hand", kind.Name())
		}
	}
	return selected, remaining, nil
}

func resolve(token string, kinds []engine.CardKind) (engine.CardKind, error) {
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > len(kinds) {
			return 0, fmt.Errorf("no card #%d", n)
		}
		return kinds[n-1], nil
	}
	return engine.ParseCardKind(token)
}
