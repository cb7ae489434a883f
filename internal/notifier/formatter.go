package notifier

import (
	"fmt"
	"html"
	"strings"

	"QuantPicker/internal/model"
	"QuantPicker/internal/ranking"
)

// FormatRankingReport formats the top n entries of a ranking run into a Telegram message.
func FormatRankingReport(run *model.RankingRun, n int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>QuantPicker 排行</b> | %s\n", run.StartedAt.Local().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("数据源: %s | 评分 %d/%d\n\n", html.EscapeString(run.Source), len(run.Results), run.Requested))

	top := ranking.TopN(run.Results, n)
	if len(top) == 0 {
		b.WriteString("没有可评分的标的\n")
	}
	for _, r := range top {
		b.WriteString(fmt.Sprintf("%2d. <code>%s</code> 收盘 %.2f  总分 <b>%.1f</b>\n", r.Rank, html.EscapeString(r.Ticker), r.LastClose, r.Total))
		b.WriteString(fmt.Sprintf("    S=%.0f Δ=%.0f P=%.0f\n", r.BaseScore, r.ThematicDelta, r.Penalty))
	}

	if len(run.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ 跳过 %d 个标的\n", len(run.Skipped)))
	}
	return b.String()
}

// FormatScoreDetail formats one score with the rules that fired.
// Text fields are HTML-escaped for Telegram's HTML parse mode.
func FormatScoreDetail(res model.ScoreResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%s</b> | 收盘 %.2f\n\n", html.EscapeString(res.Ticker), res.LastClose))

	if len(res.Rules) == 0 {
		b.WriteString("  (无规则触发)\n")
	}
	for _, r := range res.Rules {
		b.WriteString(fmt.Sprintf("  %s [%s] %+.0f  %s\n", html.EscapeString(r.Name), r.Kind, r.Contribution, html.EscapeString(r.Commentary)))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  S=%.0f  Δ=%.0f  P=%.0f\n", res.BaseScore, res.ThematicDelta, res.Penalty))
	b.WriteString(fmt.Sprintf("  总分: <b>%.1f</b>\n", res.Total))
	return b.String()
}

// FormatError formats a failure reply, escaping the error text.
func FormatError(prefix string, err error) string {
	return fmt.Sprintf("❌ %s: %s", html.EscapeString(prefix), html.EscapeString(err.Error()))
}

// HelpText lists the supported bot commands.
const HelpText = "可用命令:\n• /top [N] 最新排行\n• /score 代码 单只评分\n• /help 帮助"
