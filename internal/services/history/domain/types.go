// Package domain holds history types independent of transport or storage
package domain

import (
	"math"
	"time"

	"codeexplainer/internal/core/prompt"
)

// Language is the language tag a submission was made under
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangCpp        Language = "cpp"
	LangJava       Language = "java"
	LangSQL        Language = "sql"
	LangOther      Language = "other"
)

// Languages lists every accepted language in a stable order
var Languages = []Language{LangJavaScript, LangPython, LangCpp, LangJava, LangSQL, LangOther}

// Valid reports whether l is an accepted language
func (l Language) Valid() bool {
	for _, v := range Languages {
		if l == v {
			return true
		}
	}
	return false
}

// Mode is the analysis a record was generated with
type Mode = prompt.Mode

// Record is one successful explanation, owned by the user who created it
type Record struct {
	ID          string    `json:"_id" example:"01929a3e-5c1b-7e2f-9d1a-3b5c7e9f1a2b"`
	UserID      string    `json:"userId" example:"0192..."`
	Code        string    `json:"code" example:"print(1)"`
	Explanation string    `json:"explanation" example:"## Overview ..."`
	Language    Language  `json:"language" example:"python"`
	Mode        Mode      `json:"mode" example:"explain"`
	Timestamp   time.Time `json:"timestamp"`
}

// Draft is what the pipeline hands over to be recorded
type Draft struct {
	UserID      string
	Code        string
	Explanation string
	Language    Language
	Mode        Mode
}

const (
	// DefaultPage is the first page
	DefaultPage = 1
	// DefaultLimit is the page size when none is given
	DefaultLimit = 20
	// MaxLimit caps the page size
	MaxLimit = 100
	// MaxPage keeps (Page-1)*Limit within int for any limit up to MaxLimit
	MaxPage = math.MaxInt / MaxLimit
)

// Filter selects an owner's records
// Language and Mode match exactly when set; Search is a case-insensitive substring of code or explanation
type Filter struct {
	UserID   string
	Language Language
	Mode     Mode
	Search   string
	Page     int
	Limit    int
}

// Normalize applies the paging defaults and cap
func (f Filter) Normalize() Filter {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Offset is the number of records before the requested page
func (f Filter) Offset() int { return (f.Page - 1) * f.Limit }

// Pagination describes where a page sits in the full result
type Pagination struct {
	Page  int `json:"page" example:"1"`
	Limit int `json:"limit" example:"20"`
	Total int `json:"total" example:"42"`
	Pages int `json:"pages" example:"3"`
}

// NewPagination computes pages as ceil(total/limit)
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Page is one page of an owner's records, newest first
type Page struct {
	Histories  []Record   `json:"histories"`
	Pagination Pagination `json:"pagination"`
}
