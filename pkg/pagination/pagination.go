package pagination

const (
	// DefaultPage is used when the page is missing or not positive.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies NormalizePage and NormalizeLimit.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// NormalizePage falls back to the first page for non-positive values.
func NormalizePage(page int) int {
	if page <= 0 {
		return DefaultPage
	}
	return page
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset returns the number of rows to skip for a normalized page.
func Offset(page, limit int) int {
	return (NormalizePage(page) - 1) * NormalizeLimit(limit)
}

// Pages returns how many pages of size limit hold total rows.
func Pages(total int64, limit int) int {
	limit = NormalizeLimit(limit)
	return int((total + int64(limit) - 1) / int64(limit))
}
