package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Console é uma implementação do ConsoleInterface.
type Console struct{}

// NewConsole cria um novo Console.
func NewConsole() *Console {
	return &Console{}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BoldRed      = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

// progressHandle é uma implementação do ProgressHandle.
type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

// ProgressWithTotal cria uma barra de progresso com título e total.
func (c *Console) ProgressWithTotal(title string, total int) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false).
		Start()
	return &progressHandle{bar: bar}
}

// Increment incrementa a barra de progresso.
func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop pára a barra de progresso.
func (h *progressHandle) Stop() {
	if h.bar != nil {
		h.bar.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	// Convertemos cada célula para string
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	// Use o pterm para criar uma tabela visualmente agradável
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayYearlyTotals exibe um gráfico de barras com o total apropriado por ano.
func (c *Console) DisplayYearlyTotals(totals []types.YearlyAmount) {
	maxAmount := 0.0
	for _, t := range totals {
		if math.Abs(t.Amount) > maxAmount {
			maxAmount = math.Abs(t.Amount)
		}
	}

	if maxAmount == 0 {
		pterm.Warning.Println("All yearly totals are zero")
		return
	}

	tableData := pterm.TableData{
		{"Year", "Appropriation", "", "YoY Change"},
	}

	var prevAmount *float64

	for _, yt := range totals {
		barLength := int((math.Abs(yt.Amount) / maxAmount) * 40)
		bar := strings.Repeat("█", barLength)

		barColor := pterm.FgBlue.Sprint(bar)
		change := ""

		if prevAmount != nil {
			if math.Abs(*prevAmount) < 0.01 {
				if math.Abs(yt.Amount) < 0.01 {
					change = pterm.FgYellow.Sprint("0%")
					barColor = pterm.FgYellow.Sprint(bar)
				} else {
					change = pterm.FgCyan.Sprint("N/A")
				}
			} else {
				changePercent := ((yt.Amount - *prevAmount) / math.Abs(*prevAmount)) * 100.0

				switch {
				case math.Abs(changePercent) < 0.01:
					change = pterm.FgYellow.Sprint("0%")
					barColor = pterm.FgYellow.Sprint(bar)
				case changePercent > 999:
					change = pterm.FgGreen.Sprint(">+999%")
					barColor = pterm.FgGreen.Sprint(bar)
				case changePercent < -999:
					change = pterm.FgRed.Sprint(">-999%")
					barColor = pterm.FgRed.Sprint(bar)
				case changePercent > 0:
					change = pterm.FgGreen.Sprintf("+%.2f%%", changePercent)
					barColor = pterm.FgGreen.Sprint(bar)
				default:
					change = pterm.FgRed.Sprintf("%.2f%%", changePercent)
					barColor = pterm.FgRed.Sprint(bar)
				}
			}
		}

		tableData = append(tableData, []string{
			fmt.Sprintf("%d", yt.Year),
			FormatPeso(yt.Amount),
			barColor,
			change,
		})

		current := yt.Amount
		prevAmount = &current
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	panel := pterm.DefaultBox.WithTitle("GAA Appropriations by Year").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)

	fmt.Println("\n" + panel)
}

var amountPrinter = message.NewPrinter(language.English)

// FormatPeso formata um valor em pesos com separador de milhar.
func FormatPeso(amount float64) string {
	return amountPrinter.Sprintf("₱%.2f", amount)
}

// FormatCount formata uma contagem com separador de milhar.
func FormatCount(n int) string {
	return amountPrinter.Sprintf("%d", n)
}
