package backtest

import "SignalForge/internal/domain/models"

// computeStats summarizes a finished run from its closed trades and equity
// curve. Flat trades (PnL exactly zero) count as neither win nor loss.
func computeStats(initial, final float64, trades []models.Trade, equity []models.EquityPoint) models.BacktestStats {
	stats := models.BacktestStats{
		InitialCapital: initial,
		FinalBalance:   final,
		NetProfit:      final - initial,
		TotalTrades:    len(trades),
	}
	if initial != 0 {
		stats.NetProfitPct = stats.NetProfit / initial * 100
	}

	var grossWin, grossLoss float64
	for _, tr := range trades {
		switch {
		case tr.PnL > 0:
			stats.Wins++
			grossWin += tr.PnL
		case tr.PnL < 0:
			stats.Losses++
			grossLoss += -tr.PnL
		}
	}
	if closed := stats.Wins + stats.Losses; closed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(closed) * 100
	}
	stats.ProfitFactor = profitFactor(grossWin, grossLoss)
	stats.MaxDrawdownPct = maxDrawdownPct(equity)
	return stats
}

func profitFactor(grossWin, grossLoss float64) models.ProfitFactor {
	if grossLoss == 0 {
		if grossWin > 0 {
			return models.ProfitFactor{Infinite: true}
		}
		return models.ProfitFactor{}
	}
	return models.ProfitFactor{Value: grossWin / grossLoss}
}

// maxDrawdownPct is the largest peak-to-trough percentage decline across the
// equity curve.
func maxDrawdownPct(equity []models.EquityPoint) float64 {
	var peak, maxDD float64
	for _, p := range equity {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			if dd := (peak - p.Value) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
