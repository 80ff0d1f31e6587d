package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"retail-dashboard/internal/config"
	"retail-dashboard/internal/models"
)

const maxWorkers = 10

// Accepted transaction date layouts, tried in order.
var dateLayouts = []string{"2-1-2006", "2/1/2006"}

// Sources names the four inputs of a dataset.
type Sources struct {
	TransactionsDir  string
	CountryCodesFile string
	CustomersFile    string
	ProductInfoFile  string
}

func SourcesFromConfig(cfg config.DataConfig) Sources {
	return Sources{
		TransactionsDir:  cfg.TransactionsPath(),
		CountryCodesFile: cfg.CountryCodesPath(),
		CustomersFile:    cfg.CustomersPath(),
		ProductInfoFile:  cfg.ProductInfoPath(),
	}
}

// RawData holds the source tables as loaded, before any join.
type RawData struct {
	Transactions []models.Transaction
	CountryCodes []models.CountryCode
	Customers    []models.Customer
	Products     []models.ProductCategory
}

type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads all sources concurrently. The first failure cancels the rest.
func (l *Loader) Load(ctx context.Context, src Sources) (*RawData, error) {
	start := time.Now()
	raw := &RawData{}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := l.loadTransactions(ctx, src.TransactionsDir)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		raw.Transactions = txs
		return nil
	})
	g.Go(func() error {
		codes, err := loadCountryCodes(src.CountryCodesFile)
		if err != nil {
			return fmt.Errorf("load country codes: %w", err)
		}
		raw.CountryCodes = codes
		return nil
	})
	g.Go(func() error {
		customers, err := loadCustomers(src.CustomersFile)
		if err != nil {
			return fmt.Errorf("load customers: %w", err)
		}
		raw.Customers = customers
		return nil
	})
	g.Go(func() error {
		products, err := loadProductInfo(src.ProductInfoFile)
		if err != nil {
			return fmt.Errorf("load product info: %w", err)
		}
		raw.Products = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("sources loaded",
		"transactions", len(raw.Transactions),
		"customers", len(raw.Customers),
		"country_codes", len(raw.CountryCodes),
		"product_rows", len(raw.Products),
		"duration", time.Since(start),
	)
	return raw, nil
}

// fragmentFiles lists the tabular files of dir sorted by name, so the
// concatenation order does not depend on the platform's directory order.
func fragmentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isTabular(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

func (l *Loader) loadTransactions(ctx context.Context, dir string) ([]models.Transaction, error) {
	files, err := fragmentFiles(dir)
	if err != nil {
		return nil, err
	}

	parts := make([][]models.Transaction, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			txs, err := loadFragment(path)
			if err != nil {
				return err
			}
			parts[i] = txs
			l.logger.Debug("fragment loaded", "file", path, "rows", len(txs))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(parts...), nil
}

func loadFragment(path string) ([]models.Transaction, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	cols, err := t.columns("transaction_id", "cust_id", "tran_date", "prod_subcat_code",
		"prod_cat_code", "Qty", "Rate", "Tax", "total_amt", "Store_type")
	if err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(t.rows))
	for i, row := range t.rows {
		raw := cell(row, cols[2])
		date, err := ParseTransactionDate(raw)
		if err != nil {
			return nil, &FormatError{File: path, Line: i + 2, Value: raw}
		}

		txs = append(txs, models.Transaction{
			TransactionID:   cell(row, cols[0]),
			CustomerID:      cell(row, cols[1]),
			Date:            date,
			SubcategoryCode: cell(row, cols[3]),
			CategoryCode:    cell(row, cols[4]),
			Quantity:        parseNullDecimal(cell(row, cols[5])),
			Rate:            parseNullDecimal(cell(row, cols[6])),
			Tax:             parseNullDecimal(cell(row, cols[7])),
			TotalAmount:     parseNullDecimal(cell(row, cols[8])),
			StoreType:       cell(row, cols[9]),
		})
	}
	return txs, nil
}

func loadCountryCodes(path string) ([]models.CountryCode, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	// The first column identifies the row whatever its header says.
	codeCol, err := t.column("country_code")
	if err != nil {
		codeCol = 0
	}
	nameCol, err := t.column("country")
	if err != nil {
		return nil, err
	}

	codes := make([]models.CountryCode, 0, len(t.rows))
	for _, row := range t.rows {
		codes = append(codes, models.CountryCode{
			Code:    cell(row, codeCol),
			Country: cell(row, nameCol),
		})
	}
	return codes, nil
}

func loadCustomers(path string) ([]models.Customer, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	cols, err := t.columns("customer_Id", "Gender", "country_code")
	if err != nil {
		return nil, err
	}
	dobCol, hasDOB := t.index["dob"]

	customers := make([]models.Customer, 0, len(t.rows))
	for _, row := range t.rows {
		c := models.Customer{
			CustomerID:  cell(row, cols[0]),
			Gender:      cell(row, cols[1]),
			CountryCode: cell(row, cols[2]),
		}
		if hasDOB {
			// Birth dates are informational; an unparseable one stays zero.
			c.BirthDate, _ = ParseTransactionDate(cell(row, dobCol))
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func loadProductInfo(path string) ([]models.ProductCategory, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	cols, err := t.columns("prod_cat_code", "prod_cat", "prod_sub_cat_code", "prod_subcat")
	if err != nil {
		return nil, err
	}

	products := make([]models.ProductCategory, 0, len(t.rows))
	for _, row := range t.rows {
		products = append(products, models.ProductCategory{
			CategoryCode:    cell(row, cols[0]),
			Category:        cell(row, cols[1]),
			SubcategoryCode: cell(row, cols[2]),
			Subcategory:     cell(row, cols[3]),
		})
	}
	return products, nil
}

// ParseTransactionDate accepts DD-MM-YYYY, then DD/MM/YYYY. The result is a
// UTC midnight.
func ParseTransactionDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	var err error
	for _, layout := range dateLayouts {
		var d time.Time
		if d, err = time.Parse(layout, value); err == nil {
			return d, nil
		}
	}
	return time.Time{}, err
}

func parseNullDecimal(value string) decimal.NullDecimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
