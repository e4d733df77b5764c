package catalog

import (
	"testing"
)

func TestRecordKey(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "entry URL preferred",
			record: Record{EntryURL: "https://www.irasutoya.com/2016/10/blog-post_262.html", ImageURL: "https://example.com/a.png"},
			want:   "https://www.irasutoya.com/2016/10/blog-post_262.html",
		},
		{
			name:   "image URL fallback",
			record: Record{ImageURL: "https://example.com/a.png"},
			want:   "https://example.com/a.png",
		},
		{
			name:   "no identity",
			record: Record{Title: "タイトル"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordTranslated(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name: "fully translated",
			record: Record{
				Title:         "聖火ランナーのイラスト",
				Description:   "オリンピックの聖火ランナーのイラストです。",
				Categories:    []string{"スポーツ用品", "お祭り"},
				ImageAlt:      "聖火ランナーのイラスト",
				TitleEN:       "Torch runner illustration",
				DescriptionEN: "An illustration of an Olympic torch runner.",
				CategoriesEN:  []string{"Sports equipment", "Festival"},
				ImageAltEN:    "Torch runner illustration",
			},
			want: true,
		},
		{
			name: "missing title translation",
			record: Record{
				Title:        "聖火ランナーのイラスト",
				Categories:   []string{"スポーツ用品"},
				CategoriesEN: []string{"Sports equipment"},
			},
			want: false,
		},
		{
			name: "missing one category",
			record: Record{
				Title:        "聖火ランナーのイラスト",
				TitleEN:      "Torch runner illustration",
				Categories:   []string{"スポーツ用品", "お祭り"},
				CategoriesEN: []string{"Sports equipment"},
			},
			want: false,
		},
		{
			name: "empty category slot untranslated",
			record: Record{
				Title:        "聖火ランナーのイラスト",
				TitleEN:      "Torch runner illustration",
				Categories:   []string{"スポーツ用品", "お祭り"},
				CategoriesEN: []string{"Sports equipment", ""},
			},
			want: false,
		},
		{
			name: "empty source fields need no translation",
			record: Record{
				Title:   "聖火ランナーのイラスト",
				TitleEN: "Torch runner illustration",
			},
			want: true,
		},
		{
			name:   "completely empty record",
			record: Record{},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Translated(); got != tt.want {
				t.Errorf("Translated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordImageFilename(t *testing.T) {
	tests := []struct {
		name     string
		imageURL string
		want     string
	}{
		{
			name:     "plain URL",
			imageURL: "https://blogger.googleusercontent.com/img/taimatsu_olympic.png",
			want:     "taimatsu_olympic.png",
		},
		{
			name:     "query string stripped",
			imageURL: "https://example.com/path/picture.jpg?size=large",
			want:     "picture.jpg",
		},
		{
			name:     "empty URL",
			imageURL: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{ImageURL: tt.imageURL}
			if got := rec.ImageFilename(); got != tt.want {
				t.Errorf("ImageFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublishedYearMonth(t *testing.T) {
	tests := []struct {
		name        string
		publishedAt string
		wantYear    string
		wantMonth   string
		wantErr     bool
	}{
		{
			name:        "space separated timestamp",
			publishedAt: "2016-10-30 14:33:00",
			wantYear:    "2016",
			wantMonth:   "10",
		},
		{
			name:        "zero padded month preserved",
			publishedAt: "2019-03-01 09:00:00",
			wantYear:    "2019",
			wantMonth:   "03",
		},
		{
			name:        "ISO 8601 timestamp",
			publishedAt: "2016-10-30T14:33:00+09:00",
			wantYear:    "2016",
			wantMonth:   "10",
		},
		{
			name:        "date only",
			publishedAt: "2016-10-30",
			wantYear:    "2016",
			wantMonth:   "10",
		},
		{
			name:        "empty",
			publishedAt: "",
			wantErr:     true,
		},
		{
			name:        "garbage",
			publishedAt: "sometime last year",
			wantErr:     true,
		},
		{
			name:        "missing day",
			publishedAt: "2016-10",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{PublishedAt: tt.publishedAt}
			year, month, err := rec.PublishedYearMonth()
			if (err != nil) != tt.wantErr {
				t.Fatalf("PublishedYearMonth() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if year != tt.wantYear {
				t.Errorf("year = %q, want %q", year, tt.wantYear)
			}
			if month != tt.wantMonth {
				t.Errorf("month = %q, want %q", month, tt.wantMonth)
			}
		})
	}
}

func TestComputeDirectoryPath(t *testing.T) {
	rec := Record{
		ImageURL:    "https://blogger.googleusercontent.com/img/b/R29vZ2xl/taimatsu_olympic.png",
		PublishedAt: "2016-10-30 14:33:00",
	}

	got, err := rec.ComputeDirectoryPath()
	if err != nil {
		t.Fatalf("ComputeDirectoryPath() failed: %v", err)
	}
	want := "./images/2016/10/taimatsu_olympic.png"
	if got != want {
		t.Errorf("ComputeDirectoryPath() = %q, want %q", got, want)
	}
}

func TestComputeDirectoryPathDeterministic(t *testing.T) {
	rec := Record{
		ImageURL:    "https://example.com/pics/sakura.png",
		PublishedAt: "2021-04-02 08:15:00",
	}

	first, err := rec.ComputeDirectoryPath()
	if err != nil {
		t.Fatalf("ComputeDirectoryPath() failed: %v", err)
	}
	second, err := rec.ComputeDirectoryPath()
	if err != nil {
		t.Fatalf("ComputeDirectoryPath() failed on repeat: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical paths, got %q then %q", first, second)
	}
}

func TestComputeDirectoryPathErrors(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{
			name:   "missing image URL",
			record: Record{PublishedAt: "2016-10-30 14:33:00"},
		},
		{
			name:   "URL without filename",
			record: Record{ImageURL: "https://example.com/", PublishedAt: "2016-10-30 14:33:00"},
		},
		{
			name:   "bad timestamp",
			record: Record{ImageURL: "https://example.com/a.png", PublishedAt: "not a date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.record.ComputeDirectoryPath(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
