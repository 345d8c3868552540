package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/costing"
	"github.com/Simplici0/laffle/internal/ingredient"
	"github.com/Simplici0/laffle/internal/session"
	"github.com/Simplici0/laffle/internal/tabular"
)

const maxUploadBytes = 1 << 20

type ingredientView struct {
	Name          string
	PurchasePrice float64
	PackageSize   float64
	UnitPrice     float64
}

type costingViewData struct {
	baseViewData
	Ingredients []ingredientView
	Templates   []string
	Template    string
	Addable     []string
	Result      costing.Result
	BatchSize   int
}

func (s *server) handleCostingPage(w http.ResponseWriter, r *http.Request) {
	view := costingViewData{
		baseViewData: flashFromQuery(r),
		BatchSize:    s.calc.BatchSize,
	}
	for _, t := range costing.Templates {
		view.Templates = append(view.Templates, t.Name)
	}

	status := http.StatusOK
	selected, hasSelection := costing.Template{}, false
	if name := r.URL.Query().Get("template"); name != "" {
		selected, hasSelection = costing.TemplateByName(name)
		if !hasSelection {
			status = http.StatusBadRequest
			view.ErrorMessage = fmt.Sprintf("レシピ「%s」は存在しません", name)
		}
	}

	err := sessionFrom(r).Do(func(st *session.State) error {
		if hasSelection {
			st.Template = selected.Name
			st.Recipe = costing.Lines(selected.Available(st.Master))
		}
		if st.Template == "" && st.Recipe == nil {
			tmpl := costing.Templates[0]
			st.Template = tmpl.Name
			st.Recipe = costing.Lines(tmpl.Available(st.Master))
		}
		st.Recipe = knownLines(st.Master, st.Recipe)

		result, err := costing.Compute(st.Master, st.Recipe, s.calc.BatchSize)
		if err != nil {
			return err
		}

		view.Template = st.Template
		view.Result = result
		view.Ingredients = ingredientViews(st.Master)
		view.Addable = addable(st.Master, st.Recipe)
		return nil
	})
	if err != nil {
		status = http.StatusBadRequest
		view.ErrorMessage = describeCostingError(err)
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	s.renderTemplate(w, "costing.html", view)
}

func (s *server) handleCostingCalc(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	lines, err := parseRecipeForm(r)
	if err != nil {
		redirectWithError(w, r, "/costing", err.Error())
		return
	}

	err = sessionFrom(r).Do(func(st *session.State) error {
		if _, err := costing.Compute(st.Master, lines, s.calc.BatchSize); err != nil {
			return err
		}
		st.Recipe = lines
		return nil
	})
	if err != nil {
		redirectWithError(w, r, "/costing", describeCostingError(err))
		return
	}

	http.Redirect(w, r, "/costing", http.StatusSeeOther)
}

func (s *server) handleIngredientUpsert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form, err := parseIngredientForm(r)
	if err != nil {
		redirectWithError(w, r, "/costing", err.Error())
		return
	}

	err = sessionFrom(r).Do(func(st *session.State) error {
		_, err := st.Master.Upsert(form.Name, form.PurchasePrice, form.PackageSize)
		return err
	})
	if err != nil {
		redirectWithError(w, r, "/costing", describeCostingError(err))
		return
	}

	redirectWithSuccess(w, r, "/costing", form.Name+"を保存しました")
}

func (s *server) handleIngredientDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	_ = sessionFrom(r).Do(func(st *session.State) error {
		st.Master.Remove(name)
		st.Recipe = knownLines(st.Master, st.Recipe)
		return nil
	})

	redirectWithSuccess(w, r, "/costing", name+"を削除しました")
}

func (s *server) handleMasterImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		redirectWithError(w, r, "/costing", "CSVファイルを選択してください")
		return
	}
	defer file.Close()

	rows, err := tabular.Read(file)
	if err != nil {
		s.log.Info("csv import rejected", zap.Error(err))
		redirectWithError(w, r, "/costing", "ファイルの読み込みに失敗しました: "+err.Error())
		return
	}

	var skipped, imported int
	err = sessionFrom(r).Do(func(st *session.State) error {
		n, err := st.Master.ImportTable(rows)
		if err != nil {
			return err
		}
		skipped, imported = n, st.Master.Len()
		st.Recipe = knownLines(st.Master, st.Recipe)
		return nil
	})
	if err != nil {
		s.log.Info("csv import rejected", zap.Error(err))
		redirectWithError(w, r, "/costing", describeCostingError(err))
		return
	}

	s.log.Info("csv import", zap.Int("imported", imported), zap.Int("skipped", skipped))
	redirectWithSuccess(w, r, "/costing", fmt.Sprintf("データを復元しました！（%d件）", imported))
}

func (s *server) handleMasterExport(w http.ResponseWriter, r *http.Request) {
	var rows []ingredient.Row
	_ = sessionFrom(r).Do(func(st *session.State) error {
		rows = st.Master.ExportTable()
		return nil
	})

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tabular.FileName+`"`)
	if err := tabular.Write(w, rows); err != nil {
		s.log.Error("write csv export", zap.Error(err))
	}
}

func (s *server) handleCatalogSave(w http.ResponseWriter, r *http.Request) {
	var records []ingredient.Record
	_ = sessionFrom(r).Do(func(st *session.State) error {
		records = st.Master.Records()
		return nil
	})

	if err := s.catalog.Replace(r.Context(), records); err != nil {
		s.log.Error("save catalog", zap.Error(err))
		http.Error(w, "failed to save catalog", http.StatusInternalServerError)
		return
	}

	redirectWithSuccess(w, r, "/costing", "店舗の標準マスタとして保存しました")
}

func (s *server) handleMasterReset(w http.ResponseWriter, r *http.Request) {
	master, err := s.catalog.MasterOrDefaults(r.Context())
	if err != nil {
		s.log.Error("load catalog", zap.Error(err))
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	_ = sessionFrom(r).Do(func(st *session.State) error {
		st.Master = master
		st.Recipe = knownLines(st.Master, st.Recipe)
		return nil
	})

	redirectWithSuccess(w, r, "/costing", "標準マスタを読み込みました")
}

// knownLines drops recipe lines whose ingredient is no longer in the master.
func knownLines(m *ingredient.Master, lines []costing.Line) []costing.Line {
	kept := make([]costing.Line, 0, len(lines))
	for _, l := range lines {
		if _, err := m.Lookup(l.Ingredient); err == nil {
			kept = append(kept, l)
		}
	}
	return kept
}

func addable(m *ingredient.Master, lines []costing.Line) []string {
	used := make(map[string]bool, len(lines))
	for _, l := range lines {
		used[l.Ingredient] = true
	}
	names := make([]string, 0)
	for _, name := range m.Names() {
		if !used[name] {
			names = append(names, name)
		}
	}
	return names
}

func ingredientViews(m *ingredient.Master) []ingredientView {
	records := m.Records()
	views := make([]ingredientView, 0, len(records))
	for _, rec := range records {
		views = append(views, ingredientView{
			Name:          rec.Name,
			PurchasePrice: rec.PurchasePrice,
			PackageSize:   rec.PackageSize,
			UnitPrice:     rec.UnitPrice(),
		})
	}
	return views
}

func describeCostingError(err error) string {
	var unknown *costing.UnknownIngredientError
	var agg *ingredient.AggregateValidationError
	var verr *ingredient.ValidationError
	switch {
	case errors.As(err, &unknown):
		return fmt.Sprintf("材料マスタに「%s」がありません", unknown.Name)
	case errors.As(err, &agg):
		parts := make([]string, 0, len(agg.Rows))
		for _, row := range agg.Rows {
			parts = append(parts, fmt.Sprintf("%d行目: %v", row.Row, row.Err))
		}
		return "不正な行があるため読み込みを中止しました。" + strings.Join(parts, " / ")
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, costing.ErrInvalidBatchSize):
		return "製造個数は1以上にしてください"
	default:
		return err.Error()
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

func redirectWithSuccess(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?success="+url.QueryEscape(message), http.StatusSeeOther)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
