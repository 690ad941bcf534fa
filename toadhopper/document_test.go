package toadhopper

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotice() *Notice {
	return &Notice{
		APIKey:       "abc123",
		ErrorClass:   "RuntimeError",
		ErrorMessage: `undefined method "name" for <nil> & friends`,
		Backtrace: []Frame{
			{File: "app/models/user.rb", Line: 53, Method: "save"},
			{File: "app/main.go", Line: 7},
		},
		URL:             "http://example.com/users?id=1&tab=2",
		Component:       "users",
		Action:          "show",
		Params:          map[string]any{"id": "1", "password": FilteredValue},
		NotifierName:    DefaultNotifierName,
		NotifierVersion: Version,
		NotifierURL:     DefaultNotifierURL,
		Session:         map[string]any{"cart": map[string]any{"items": []any{"a<b>", 2}}},
		Environment:     map[string]any{"HOME": "/home/app"},
		FrameworkEnv:    "production",
		ProjectRoot:     "/srv/app",
	}
}

func TestBuildDocument(t *testing.T) {
	doc, err := BuildDocument(sampleNotice())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, `<notice version="2.0">`)
	assert.Contains(t, doc, `<api-key>abc123</api-key>`)
	assert.Contains(t, doc, `<name>toadhopper</name>`)
	assert.Contains(t, doc, `<class>RuntimeError</class>`)
	assert.Contains(t, doc, `<message>undefined method &#34;name&#34; for &lt;nil&gt; &amp; friends</message>`)
	assert.Contains(t, doc, `<line file="app/models/user.rb" number="53" method="save"/>`)
	assert.Contains(t, doc, `<line file="app/main.go" number="7"/>`)
	assert.Contains(t, doc, `<url>http://example.com/users?id=1&amp;tab=2</url>`)
	assert.Contains(t, doc, `<params><var key="id">1</var><var key="password">[FILTERED]</var></params>`)
	assert.Contains(t, doc, `<session><var key="cart"><var key="items"><var key="0">a&lt;b&gt;</var><var key="1">2</var></var></var></session>`)
	assert.Contains(t, doc, `<cgi-data><var key="HOME">/home/app</var></cgi-data>`)
	assert.Contains(t, doc, `<project-root>/srv/app</project-root>`)
	assert.Contains(t, doc, `<environment-name>production</environment-name>`)
}

func TestBuildDocumentIsWellFormed(t *testing.T) {
	doc, err := BuildDocument(sampleNotice())
	require.NoError(t, err)

	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}
}

func TestBuildDocumentOmitsEmptySections(t *testing.T) {
	notice := sampleNotice()
	notice.Params = nil
	notice.Session = map[string]any{}
	notice.Environment = nil

	doc, err := BuildDocument(notice)
	require.NoError(t, err)

	assert.NotContains(t, doc, "<params>")
	assert.NotContains(t, doc, "<session>")
	assert.NotContains(t, doc, "<cgi-data>")
}
