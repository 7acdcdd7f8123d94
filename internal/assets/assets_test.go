package assets

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFileHeader builds a real multipart.FileHeader by round-tripping a
// form through the http multipart reader.
func makeFileHeader(t *testing.T, filename string, size int) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["file"][0]
}

func TestSave(t *testing.T) {
	testCases := []struct {
		name          string
		filename      string
		size          int
		kind          Kind
		expectedError error
	}{
		{
			name:     "png logo",
			filename: "logo.png",
			size:     128,
			kind:     BuilderLogo,
		},
		{
			name:     "uppercase extension is normalized",
			filename: "logo.JPG",
			size:     128,
			kind:     BuilderLogo,
		},
		{
			name:     "pdf brochure",
			filename: "plan.pdf",
			size:     128,
			kind:     PropertyBrochure,
		},
		{
			name:          "executable rejected",
			filename:      "logo.exe",
			size:          128,
			kind:          BuilderLogo,
			expectedError: ErrUnsupportedFormat,
		},
		{
			name:          "image posing as brochure rejected",
			filename:      "plan.png",
			size:          128,
			kind:          PropertyBrochure,
			expectedError: ErrUnsupportedFormat,
		},
		{
			name:          "no extension rejected",
			filename:      "logo",
			size:          128,
			kind:          BuilderLogo,
			expectedError: ErrUnsupportedFormat,
		},
		{
			name:          "oversized image rejected",
			filename:      "logo.png",
			size:          2*megabyte + 1,
			kind:          BuilderLogo,
			expectedError: ErrFileTooLarge,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(t.TempDir())
			fh := makeFileHeader(t, tc.filename, tc.size)

			name, err := store.Save(fh, tc.kind)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, name)

				return
			}

			require.NoError(t, err)
			assert.True(t, store.Exists(tc.kind, name))

			// The stored name never leaks the upload name and always
			// carries the kind's suffix plus the normalized extension.
			assert.NotContains(t, name, tc.filename)
			assert.True(t, strings.HasSuffix(name, strings.ToLower(tc.filename[strings.LastIndex(tc.filename, "."):])))

			if tc.kind.Suffix != "" {
				assert.Contains(t, name, tc.kind.Suffix)
			}
		})
	}
}

func TestSaveNamesDoNotCollide(t *testing.T) {
	store := NewStore(t.TempDir())

	seen := make(map[string]struct{})

	for i := 0; i < 32; i++ {
		fh := makeFileHeader(t, "pic.png", 16)

		name, err := store.Save(fh, PropertyImage)
		require.NoError(t, err)

		_, dup := seen[name]
		require.False(t, dup, "duplicate generated filename %q", name)

		seen[name] = struct{}{}
	}
}

func TestRemove(t *testing.T) {
	store := NewStore(t.TempDir())
	fh := makeFileHeader(t, "logo.png", 16)

	name, err := store.Save(fh, BuilderLogo)
	require.NoError(t, err)
	require.True(t, store.Exists(BuilderLogo, name))

	store.Remove(BuilderLogo, name)
	assert.False(t, store.Exists(BuilderLogo, name))

	// Removing again, or removing nothing, is fine.
	store.Remove(BuilderLogo, name)
	store.Remove(BuilderLogo, "")
}

func TestPath(t *testing.T) {
	store := NewStore("/srv/uploads")
	assert.Equal(t, "/srv/uploads/builders/x.png", store.Path(BuilderLogo, "x.png"))
	assert.Equal(t, "/srv/uploads", store.Root())
}
