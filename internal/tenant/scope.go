package tenant

import "gorm.io/gorm"

// Scope is the request-scoped tenant boundary. Every query against a
// company-owned table must go through Scoped so the company_id filter cannot
// be forgotten at a call site.
type Scope struct {
	CompanyID string
}

// Scoped applies the tenant filter.
func (s Scope) Scoped(db *gorm.DB) *gorm.DB {
	return db.Where("company_id = ?", s.CompanyID)
}

// Owns stamps the scope's company onto a record about to be written.
func (s Scope) Owns(companyID *string) {
	*companyID = s.CompanyID
}
