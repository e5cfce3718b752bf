package notifier

import (
	"fmt"
	"strings"
	"time"

	"AnimalitoSentinel/internal/model"
)

var tierBadges = map[model.ConfidenceTier]string{
	model.TierHigh:   "🟢 ALTA",
	model.TierMedium: "🟡 MEDIA",
	model.TierLow:    "🔴 BAJA",
}

var provenanceLabels = map[model.Provenance]string{
	model.ProvenanceLive:      "datos en vivo",
	model.ProvenanceCached:    "datos en caché",
	model.ProvenanceStale:     "datos en caché (vencidos)",
	model.ProvenanceSynthetic: "datos simulados",
}

// FormatPredictionDigest formats a ranked prediction into a Telegram message.
func FormatPredictionDigest(lotteryName string, preds []model.PredictionResult, historyLen int, refined bool, prov model.Provenance) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔮 <b>Predicciones %s</b> | %s\n\n", lotteryName, time.Now().Format("2006-01-02")))

	if len(preds) == 0 {
		b.WriteString("Sin historial suficiente para predecir. Esperando resultados...\n")
		return b.String()
	}

	for i, p := range preds {
		b.WriteString(fmt.Sprintf("%d. %s <b>%s %s</b> — %.1f%% [%s]\n",
			i+1, p.Animal.Glyph, p.Animal.Code, p.Animal.Name, p.Probability, tierBadges[p.Confidence]))
		if p.Rationale != "" {
			b.WriteString(fmt.Sprintf("   <i>%s</i>\n", p.Rationale))
		}
	}

	b.WriteString(fmt.Sprintf("\nHistorial: %d sorteos | Fuente: %s", historyLen, provenanceLabel(prov)))
	if refined {
		b.WriteString(" | refinado ✨")
	}
	b.WriteString("\n")
	return b.String()
}

// FormatScheduleBoard formats today's slot board for display.
func FormatScheduleBoard(lotteryName string, statuses []model.SlotStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Sorteos de hoy — %s</b>\n\n", lotteryName))

	for _, s := range statuses {
		switch {
		case s.Animal != nil:
			b.WriteString(fmt.Sprintf("✅ %s: %s %s %s\n", s.Label, s.Animal.Glyph, s.Animal.Code, s.Animal.Name))
		case s.IsCompleted:
			b.WriteString(fmt.Sprintf("✅ %s: resultado pendiente de publicación\n", s.Label))
		case s.IsNext:
			b.WriteString(fmt.Sprintf("➡️ %s: <b>próximo sorteo</b>\n", s.Label))
		default:
			b.WriteString(fmt.Sprintf("⏳ %s: por jugar\n", s.Label))
		}
	}
	return b.String()
}

// FormatCountdown formats the time remaining until the next draw.
func FormatCountdown(lotteryName, countdown string) string {
	return fmt.Sprintf("⏱ <b>%s</b> — próximo sorteo en: %s", lotteryName, countdown)
}

func provenanceLabel(p model.Provenance) string {
	if label, ok := provenanceLabels[p]; ok {
		return label
	}
	return string(p)
}
