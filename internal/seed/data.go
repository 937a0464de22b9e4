package seed

import (
	"time"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/modules/blog"
)

type step struct {
	table string
	rows  interface{}
	n     int
}

// portfolioSteps builds fresh rows on every call so generated IDs never carry over.
func portfolioSteps() []step {
	profile := &models.Profile{
		Name:              "Alex Morgan",
		Title:             "Full-Stack Engineer",
		Bio:               "I build web products end to end, from database schemas to polished interfaces.",
		Email:             "hello@example.com",
		Location:          "Lisbon, Portugal",
		Avatar:            "/images/avatar.jpg",
		ResumeURL:         "/resume.pdf",
		AvailableForWork:  true,
		YearsOfExperience: 8,
	}
	links := []models.SocialLink{
		{Name: "GitHub", Platform: "github", URL: "https://github.com/example", Icon: "github", Order: 1, Visible: true},
		{Name: "LinkedIn", Platform: "linkedin", URL: "https://linkedin.com/in/example", Icon: "linkedin", Order: 2, Visible: true},
		{Name: "Twitter", Platform: "twitter", URL: "https://twitter.com/example", Icon: "twitter", Order: 3, Visible: false},
	}
	skills := []models.Skill{
		{Name: "TypeScript", Category: "frontend", Level: 90, Icon: "typescript", Order: 1},
		{Name: "React", Category: "frontend", Level: 88, Icon: "react", Order: 2},
		{Name: "Go", Category: "backend", Level: 85, Icon: "go", Order: 3},
		{Name: "PostgreSQL", Category: "backend", Level: 80, Icon: "postgresql", Order: 4},
		{Name: "Docker", Category: "devops", Level: 75, Icon: "docker", Order: 5},
	}
	experience := []models.Experience{
		{
			Company:      "Northwind Labs",
			Position:     "Senior Software Engineer",
			Description:  "Lead the platform team building the customer-facing dashboard.",
			StartDate:    date(2021, time.March),
			Current:      true,
			Location:     "Remote",
			Technologies: models.StringArray{"Go", "React", "PostgreSQL"},
			Order:        1,
		},
		{
			Company:      "Contoso",
			Position:     "Software Engineer",
			Description:  "Shipped the billing pipeline and internal tooling.",
			StartDate:    date(2017, time.June),
			EndDate:      datePtr(2021, time.February),
			Location:     "Porto, Portugal",
			Technologies: models.StringArray{"Node.js", "TypeScript", "Redis"},
			Order:        2,
		},
	}
	education := []models.Education{
		{
			Institution: "University of Lisbon",
			Degree:      "BSc",
			Field:       "Computer Science",
			StartDate:   date(2013, time.September),
			EndDate:     datePtr(2017, time.June),
			Grade:       "17/20",
			Order:       1,
		},
	}
	projects := []models.Project{
		{
			Title:       "Portfolio CMS",
			Description: "A headless CMS powering this site.",
			Link:        "https://example.com",
			Github:      "https://github.com/example/portfolio",
			Tags:        models.StringArray{"go", "nextjs"},
			Featured:    true,
			Order:       1,
		},
		{
			Title:       "Habit Tracker",
			Description: "An offline-first mobile habit tracker.",
			Github:      "https://github.com/example/habits",
			Tags:        models.StringArray{"react-native", "sqlite"},
			Order:       2,
		},
	}
	recommendations := []models.Recommendation{
		{
			Name:     "Jamie Rivera",
			Position: "Engineering Manager",
			Company:  "Northwind Labs",
			Text:     "Alex consistently turns vague requirements into reliable software.",
			Order:    1,
		},
	}
	content := []models.Content{
		{Key: "hero_title", Value: "Hi, I'm Alex", Type: "text"},
		{Key: "hero_subtitle", Value: "I design and build products for the web.", Type: "text"},
		{Key: "about_body", Value: "## About\n\nEight years of shipping software.", Type: "markdown"},
	}

	return []step{
		{"profiles", profile, 1},
		{"social_links", &links, len(links)},
		{"skills", &skills, len(skills)},
		{"experiences", &experience, len(experience)},
		{"education", &education, len(education)},
		{"projects", &projects, len(projects)},
		{"recommendations", &recommendations, len(recommendations)},
		{"contents", &content, len(content)},
	}
}

func samplePosts() []blog.CreateBlogDTO {
	return []blog.CreateBlogDTO{
		{
			Title:     "Getting Started with Next.js 14",
			Slug:      "getting-started-with-nextjs-14",
			Markdown:  "# Getting Started\n\nThe App Router changes how **layouts** and data fetching work.\n\nThis post walks through a fresh project.",
			Tags:      []string{"nextjs", "react"},
			Author:    "Alex Morgan",
			Published: true,
			Featured:  true,
		},
		{
			Title:     "Structuring a Go REST API",
			Slug:      "structuring-a-go-rest-api",
			Markdown:  "# Layout\n\nKeep handlers thin and push rules into services.\n\nEach module owns its routes.",
			Tags:      []string{"go", "api"},
			Author:    "Alex Morgan",
			Published: true,
		},
		{
			Title:    "Notes on CSS Container Queries",
			Slug:     "notes-on-css-container-queries",
			Markdown: "Container queries let components respond to their own size.",
			Tags:     []string{"css", "react"},
			Author:   "Alex Morgan",
		},
	}
}
