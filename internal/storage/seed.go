package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

// MonthNames holds the Portuguese month names used in seeded notes and
// printable reports.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func systemCategories() []core.Category {
	return []core.Category{
		{Key: core.CategoryMensalidade, Label: "Mensalidade", Color: "#3B5BDB", System: true},
		{Key: core.CategoryPensao, Label: "Pensão Alimentícia", Color: "#C0392B", System: true},
		{Key: core.CategoryMatricula, Label: "Matrícula", Color: "#C05C1A", System: true},
		{Key: core.CategoryMaterial, Label: "Material", Color: "#1A7F7A", System: true},
		{Key: core.CategoryUniforme, Label: "Uniforme", Color: "#6B4FBB", System: true},
		{Key: core.CategoryExtra, Label: "Extra", Color: "#2E7D55", System: true},
	}
}

func systemParties() []core.Party {
	return []core.Party{
		{Key: "me", Label: "Eu", System: true},
		{Key: "father", Label: "Pai", System: true},
		{Key: "school", Label: "Escola", System: true},
		{Key: "store", Label: "Loja", System: true},
		{Key: "other", Label: "Outro", System: true},
	}
}

// SeedIfEmpty installs any missing system categories/parties and, when the
// ledger holds no transactions, a demo dataset spanning 2025 and 2026.
// Entries already present are left untouched so label/color edits survive
// restarts.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context) error {
	for _, c := range systemCategories() {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO categories (key, label, color, system) VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO NOTHING`,
			c.Key, c.Label, c.Color, c.System)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Key, err)
		}
	}
	for _, p := range systemParties() {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO parties (key, label, system) VALUES (?, ?, ?)
			ON CONFLICT(key) DO NOTHING`,
			p.Key, p.Label, p.System)
		if err != nil {
			return fmt.Errorf("seed party %s: %w", p.Key, err)
		}
	}

	n, err := r.CountTransactions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, t := range demoTransactions() {
		t.Normalize()
		if _, err := r.SaveTransaction(ctx, t); err != nil {
			return fmt.Errorf("seed transaction: %w", err)
		}
	}

	slog.InfoContext(ctx, "Seeded demo ledger", "transactions", len(demoTransactions()))
	return nil
}

func demoTx(ttype core.TxType, cat, party, date string, cents int64, isLate bool, notes, tags string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic("seed date: " + date)
	}
	return core.Transaction{
		Type:        ttype,
		CategoryKey: cat,
		Party:       party,
		Date:        d,
		Amount:      core.Money{Cents: cents},
		IsLate:      isLate,
		Notes:       notes,
		Tags:        tags,
	}
}

func demoTransactions() []core.Transaction {
	var txs []core.Transaction

	// 2025 monthly tuition, last installment rounded down a cent
	for m := 1; m <= 12; m++ {
		cents := int64(499841)
		if m == 12 {
			cents = 499840
		}
		txs = append(txs, demoTx(core.TxPaid, core.CategoryMensalidade, "me",
			fmt.Sprintf("2025-%02d-05", m), cents, false,
			fmt.Sprintf("Mensalidade %s/2025", MonthNames[m-1]), "mensalidade"))
	}

	txs = append(txs, demoTx(core.TxPaid, core.CategoryMatricula, "me",
		"2025-01-05", 425688, false, "Matrícula anual 2025", "matricula"))

	for _, d := range []string{"2025-01-05", "2025-04-05", "2025-07-05", "2025-09-05"} {
		m, _ := core.ParseDate(d)
		txs = append(txs, demoTx(core.TxPaid, core.CategoryMaterial, "me",
			d, 72450, false, fmt.Sprintf("Material %s/2025", MonthNames[m.Month()-1]), "material"))
	}

	txs = append(txs, demoTx(core.TxPaid, core.CategoryExtra, "me",
		"2025-01-05", 108423, false, "Extra Jan/2025", "extra"))

	// 2025 pensao payments, some months twice, a few late
	pensao25 := []struct {
		date  string
		cents int64
		late  bool
	}{
		{"2025-01-05", 200000, false}, {"2025-02-05", 200000, false},
		{"2025-03-05", 200000, false}, {"2025-04-05", 200000, false},
		{"2025-05-06", 100000, true}, {"2025-06-05", 200000, false},
		{"2025-07-03", 100000, false}, {"2025-07-17", 100000, true},
		{"2025-08-05", 200000, false}, {"2025-09-05", 200000, false},
		{"2025-10-04", 200000, false}, {"2025-11-05", 200000, false},
		{"2025-11-22", 150000, true}, {"2025-12-05", 350000, false},
	}
	for _, p := range pensao25 {
		d, _ := core.ParseDate(p.date)
		txs = append(txs, demoTx(core.TxReceived, core.CategoryPensao, "father",
			p.date, p.cents, p.late,
			fmt.Sprintf("Pensão %s/2025", MonthNames[d.Month()-1]), "pensao"))
	}

	// 2026
	for _, d := range []string{"2026-01-05", "2026-02-05"} {
		m, _ := core.ParseDate(d)
		txs = append(txs, demoTx(core.TxPaid, core.CategoryMensalidade, "me",
			d, 566685, false, fmt.Sprintf("Mensalidade %s/2026", MonthNames[m.Month()-1]), "mensalidade"))
	}
	txs = append(txs,
		demoTx(core.TxPaid, core.CategoryMatricula, "me", "2026-01-05", 149129, false, "Matrícula 2026", "matricula"),
		demoTx(core.TxPaid, core.CategoryMaterial, "me", "2026-01-05", 104733, false, "Material Jan/2026", "material"),
		demoTx(core.TxPaid, core.CategoryExtra, "me", "2026-02-05", 150341, false, "Excursão parcela 1", "extra"),
	)
	for m := 3; m <= 8; m++ {
		txs = append(txs, demoTx(core.TxPaid, core.CategoryExtra, "me",
			fmt.Sprintf("2026-%02d-05", m), 42900, false,
			fmt.Sprintf("Excursão %s/2026", MonthNames[m-1]), "extra,excursao"))
	}
	txs = append(txs,
		demoTx(core.TxReceived, core.CategoryPensao, "father", "2026-01-12", 200000, true, "Pensão Jan/2026 — atraso", "pensao"),
		demoTx(core.TxReceived, core.CategoryPensao, "father", "2026-02-07", 250000, true, "Pensão Fev/2026 — atraso", "pensao"),
	)

	return txs
}
