package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is an ordered list of strings stored as a JSON TEXT column.
// Used for book categories and photo tags.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Reading status values kept on the book record for legacy display.
// The per-user ReadingProgress table is the source of truth.
const (
	BookStatusNotStarted = "Not Started"
	BookStatusInProgress = "In Progress"
	BookStatusCompleted  = "Completed"
)

// Photo type values for BookPhoto.PhotoType.
const (
	PhotoTypeCover   = "cover"
	PhotoTypeSpine   = "spine"
	PhotoTypeEdges   = "edges"
	PhotoTypeSpecial = "special"
)

type Book struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"index;size:512" json:"title"`
	Author string `gorm:"index;size:256" json:"author"`
	ISBN   string `gorm:"index;size:20" json:"isbn,omitempty"`

	// Physical/format attributes
	Format           string `gorm:"size:50" json:"format,omitempty"` // physical, ebook, audiobook
	BindingType      string `gorm:"size:50" json:"binding_type,omitempty"`
	PhysicalFormat   string `gorm:"size:50" json:"physical_format,omitempty"`
	BookCondition    string `gorm:"size:50" json:"book_condition,omitempty"`
	IsSigned         bool   `gorm:"default:false" json:"is_signed"`
	EditionType      string `gorm:"size:100" json:"edition_type,omitempty"`
	EdgeType         string `gorm:"size:50" json:"edge_type,omitempty"`
	BindingDetails   string `gorm:"type:text" json:"binding_details,omitempty"`
	HasBonusChapters bool   `gorm:"default:false" json:"has_bonus_chapters"`

	// Series
	Series      string  `gorm:"index;size:256" json:"series,omitempty"`
	SeriesOrder float64 `json:"series_order,omitempty"`

	// Descriptive metadata
	Publisher       string     `gorm:"size:256" json:"publisher,omitempty"`
	Language        string     `gorm:"size:50" json:"language,omitempty"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	Categories      StringList `gorm:"type:text" json:"categories,omitempty"`
	PageCount       int        `json:"page_count,omitempty"`
	PublicationDate string     `gorm:"size:50" json:"publication_date,omitempty"`

	// Cover references. A local cached image wins over the remote URL.
	CoverURL       string `gorm:"size:2048" json:"cover_url,omitempty"`
	CoverImagePath string `gorm:"size:1024" json:"cover_image_path,omitempty"`

	// Denormalized loan fields, mirrored from the loans table for legacy display.
	IsLoaned     bool       `gorm:"default:false" json:"is_loaned"`
	BorrowerName string     `gorm:"size:256" json:"borrower_name,omitempty"`
	LoanDate     *time.Time `json:"loan_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`

	// Denormalized reading fields, mirrored from reading_progress for legacy display.
	Status             string     `gorm:"size:50;default:'Not Started'" json:"status"`
	CurrentPage        int        `json:"current_page"`
	ProgressPercentage int        `json:"progress_percentage"`
	LastReadAt         *time.Time `json:"last_read_at,omitempty"`

	Rating float64 `json:"rating"` // 0-5 in half steps
	Notes  string  `gorm:"type:text" json:"notes,omitempty"`

	Photos []BookPhoto `gorm:"foreignKey:BookID" json:"photos,omitempty"`

	// Populated at read time from shelf memberships, never stored.
	ShelfIDs []uint `gorm:"-" json:"shelf_ids"`

	AddedAt   time.Time `gorm:"column:added_at;autoCreateTime" json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecomputeProgress derives the progress percentage from the current page and
// page count. Must be called whenever either field changes; the stored value is
// never trusted on its own.
func (b *Book) RecomputeProgress() {
	if b.PageCount <= 0 {
		b.ProgressPercentage = 0
		return
	}
	pct := int(float64(b.CurrentPage)/float64(b.PageCount)*100 + 0.5)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	b.ProgressPercentage = pct
}
