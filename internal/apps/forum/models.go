package forum

import (
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const UnknownCategoryName = "Catégorie inconnue"

// Category is one of the fixed forum sections.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	PostCount int64  `json:"post_count"`
}

var Categories = []Category{
	{
		ID:       "events",
		Name:     "Événements et activités",
		Title:    "Pour discuter des événements locaux",
		Subtitle: "Par exemple une fête dans la cité\nou une conférence (compléter la page \"Événements\")",
	},
	{
		ID:       "reports",
		Name:     "Signalements et améliorations",
		Title:    "Un espace pour échanger sur les dysfonctionnements signalés",
		Subtitle: "Comme un lampadaire cassé, des ordures ou des voitures abandonnées (compléter la page \"Signalements\").\nLes habitants peuvent donner leur avis ou proposer des solutions.",
	},
	{
		ID:       "daily",
		Name:     "Vie quotidienne",
		Title:    "Pour les sujets liés au quotidien dans le quartier",
		Subtitle: "Comme des recommandations (boulangerie, médecin, etc.), des questions sur les services locaux,\nou des partages d’astuces (par exemple, \"Où trouver un bon plombier ?\").",
	},
	{
		ID:       "ads",
		Name:     "Petites annonces",
		Title:    "Un espace pour des échanges entre habitants",
		Subtitle: "Comme des ventes d’objets, des demandes de covoiturage,\nou des offres de services (baby-sitting, gardiens, etc.).",
	},
	{
		ID:       "ideas",
		Name:     "Idées et suggestions",
		Title:    "Pour proposer des idées d’amélioration du quartier",
		Subtitle: "Comme l’installation de bancs\nou l’organisation d’une journée de nettoyage.",
	},
}

// LookupCategory returns the category with id. Unknown ids resolve to a
// category named UnknownCategoryName and ok is false.
func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{ID: id, Name: UnknownCategoryName}, false
}

func categoryIDs() []string {
	ids := make([]string, len(Categories))
	for i, c := range Categories {
		ids[i] = c.ID
	}
	return ids
}

type Post struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string         `gorm:"size:100;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Category     string         `gorm:"size:20;not null;index" json:"category"`
	PhotoURL     string         `gorm:"type:text" json:"photo_url,omitempty"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *models.User   `gorm:"foreignKey:UserID" json:"-"`
	AuthorName   string         `gorm:"-" json:"author_name"`
	CommentCount int64          `gorm:"-" json:"comment_count"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Comment struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *models.User   `gorm:"foreignKey:UserID" json:"-"`
	AuthorName string         `gorm:"-" json:"author_name"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// --- DTOs ---

type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}

type CategoryPostsResponse struct {
	Category Category `json:"category"`
	Posts    []Post   `json:"posts"`
}

type PostDetail struct {
	Post     *Post     `json:"post"`
	Comments []Comment `json:"comments"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
