package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/strategy"
)

// FormatDailyReport formats the latest classified day of a run into a Telegram message.
func FormatDailyReport(summary *model.RunSummary) string {
	var b strings.Builder
	row := summary.Latest

	b.WriteString(fmt.Sprintf("🚦 <b>BreadthSentinel 日报</b> | %s\n\n", esc(row.Date)))
	b.WriteString(fmt.Sprintf("%s\n", lampLine(row.LampOn)))
	b.WriteString(fmt.Sprintf("状态: <b>%s</b> (%s / 风险 %s)\n", esc(string(row.State)), esc(string(row.Mode)), esc(string(row.Risk))))
	if prev := summary.Previous; prev != nil && prev.State != nil && *prev.State != string(row.State) {
		b.WriteString(fmt.Sprintf("状态变化: %s → %s (上次 %s)\n", esc(*prev.State), esc(string(row.State)), esc(prev.Date)))
	}

	// Breadth
	b.WriteString("\n📊 <b>市场宽度:</b>\n")
	b.WriteString(fmt.Sprintf("  上涨/下跌: %s / %s (净 %s)\n", intText(row.Advances), intText(row.Declines), intText(row.NetAdvances)))
	b.WriteString(fmt.Sprintf("  新高/新低: %s / %s (阈值 %s)\n", intText(row.NewHighs), intText(row.NewLows), intText(row.ThresholdCount)))
	b.WriteString(fmt.Sprintf("  TRIN: %s\n", floatText(row.Trin, 2)))

	// Confirmation
	b.WriteString("\n🔍 <b>确认条件:</b>\n")
	b.WriteString(fmt.Sprintf("  基础信号: %s\n", yesNo(row.BaseSignal)))
	b.WriteString(fmt.Sprintf("  30日内信号数: %d\n", row.ClusterSignalCount))
	b.WriteString(fmt.Sprintf("  振荡器(EMA19-EMA39): %s\n", floatText(row.Oscillator, 1)))
	b.WriteString(fmt.Sprintf("  NYA 50日趋势: %s\n", trendText(row.TrendCondition)))

	b.WriteString(fmt.Sprintf("\n📅 区间 %s ~ %s: %d 天, 亮灯 %d, 触发 %d\n",
		esc(summary.FromDate), esc(summary.ToDate), summary.GeneratedDays, summary.LitCount, summary.TriggerCount))

	if row.Triggered {
		b.WriteString("\n⚠️ 兴登堡凶兆已确认触发, 注意控制仓位风险\n")
	}
	return b.String()
}

// FormatStatus formats the most recent stored record.
func FormatStatus(rec *model.HistoryRecord) string {
	if rec == nil {
		return "📭 暂无历史记录, 发送 /run 执行一次评估"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚦 <b>最新状态</b> | %s\n\n", esc(rec.Date)))
	b.WriteString(fmt.Sprintf("%s\n", lampLine(recordLamp(*rec))))
	b.WriteString(fmt.Sprintf("状态: <b>%s</b> (%s / 风险 %s)\n", strText(rec.State), strText(rec.Mode), strText(rec.Risk)))
	b.WriteString(fmt.Sprintf("上涨/下跌: %s / %s (净 %s)\n", intText(rec.Advances), intText(rec.Declines), intText(rec.NetAdvances)))
	b.WriteString(fmt.Sprintf("新高/新低: %s / %s\n", intText(rec.NewHighs), intText(rec.NewLows)))
	b.WriteString(fmt.Sprintf("TRIN: %s\n", floatText(rec.Trin, 2)))
	if rec.Derived {
		b.WriteString("(回放推导记录)\n")
	}
	return b.String()
}

// FormatHistory lists the most recent records, newest first.
func FormatHistory(records []model.HistoryRecord, limit int) string {
	if len(records) == 0 {
		return "📭 暂无历史记录"
	}
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📜 <b>最近 %d 条记录</b>\n\n", limit))
	for i := len(records) - 1; i >= len(records)-limit; i-- {
		rec := records[i]
		lamp := "🟢"
		if recordLamp(rec) {
			lamp = "🔴"
		}
		mark := ""
		if rec.Derived {
			mark = " *"
		}
		b.WriteString(fmt.Sprintf("%s %s %s (%s)%s\n", esc(rec.Date), lamp, strText(rec.State), strText(rec.Mode), mark))
	}
	b.WriteString("\n* 为回放推导记录")
	return b.String()
}

// FormatRunFailure formats a failed run.
func FormatRunFailure(err error) string {
	var b strings.Builder
	b.WriteString("❌ <b>BreadthSentinel 评估失败</b>\n\n")
	var runErr *model.RunError
	switch {
	case errors.As(err, &runErr) && errors.Is(err, model.ErrDataUnavailable):
		b.WriteString(fmt.Sprintf("数据不可用: %s\n", errText(runErr.Reason)))
	case errors.As(err, &runErr) && errors.Is(err, model.ErrEmptyResult):
		b.WriteString(fmt.Sprintf("无有效数据: %s\n", errText(runErr.Reason)))
	default:
		b.WriteString(fmt.Sprintf("错误: %s\n", errText(fmt.Sprint(err))))
	}
	b.WriteString("历史记录未修改")
	return b.String()
}

// recordLamp prefers the stored flag and falls back to the state text.
func recordLamp(rec model.HistoryRecord) bool {
	if rec.LampOn != nil {
		return *rec.LampOn
	}
	triggered := rec.Triggered != nil && *rec.Triggered
	state := ""
	if rec.State != nil {
		state = *rec.State
	}
	return strategy.IsLampOn(state, triggered)
}

func lampLine(on bool) string {
	if on {
		return "🔴 警示灯: <b>亮</b>"
	}
	return "🟢 警示灯: 灭"
}

func intText(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func floatText(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func strText(v *string) string {
	if v == nil {
		return "-"
	}
	return esc(*v)
}

// esc makes dynamic text safe for parse_mode HTML.
func esc(s string) string { return html.EscapeString(s) }

// maxErrorText bounds the error detail quoted in a failure alert, in runes.
const maxErrorText = 300

func errText(s string) string {
	if r := []rune(s); len(r) > maxErrorText {
		s = string(r[:maxErrorText]) + "…"
	}
	return esc(s)
}

func yesNo(v bool) string {
	if v {
		return "是"
	}
	return "否"
}

func trendText(v *bool) string {
	switch {
	case v == nil:
		return "未知"
	case *v:
		return "上升"
	default:
		return "下降"
	}
}
