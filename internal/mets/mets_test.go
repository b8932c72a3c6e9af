package mets

import (
	"reflect"
	"strings"
	"testing"
)

const (
	imageMIME = "image/vnd.djvu"
	textMIME  = "text/plain"
)

const manifestHead = `<?xml version="1.0" encoding="UTF-8"?>
<mets xmlns="http://www.loc.gov/METS/"
      xmlns:marc="http://www.loc.gov/MARC21/slim"
      xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/"
      xmlns:dc="http://purl.org/dc/elements/1.1/"
      xmlns:xlink="http://www.w3.org/1999/xlink"
      OBJID="handle/uuid:1234">
  <dmdSec ID="DMD_MARC">
    <mdWrap MDTYPE="MARC">
      <xmlData>
        <marc:collection>
          <marc:record>
            <marc:datafield tag="245" ind1="1" ind2="0">
              <marc:subfield code="a">Staré pověsti české</marc:subfield>
            </marc:datafield>
          </marc:record>
        </marc:collection>
      </xmlData>
    </mdWrap>
  </dmdSec>
  <dmdSec ID="DMD_DC">
    <mdWrap MDTYPE="DC">
      <xmlData>
        <oai_dc:dc>
          <dc:language>cze</dc:language>
          <dc:language>eng</dc:language>
        </oai_dc:dc>
      </xmlData>
    </mdWrap>
  </dmdSec>`

const manifestFileSec = `
  <fileSec>
    <fileGrp USE="img">
      <file ID="IMG_0001" USE="Page" MIMETYPE="image/vnd.djvu">
        <FLocat LOCTYPE="URL" xlink:href="http://example.org/img/1"/>
      </file>
      <file ID="IMG_0002" USE="Page" MIMETYPE="image/vnd.djvu">
        <FLocat LOCTYPE="URL" xlink:href="http://example.org/img/2"/>
      </file>
      <file ID="THUMB_0001" USE="Thumbnail" MIMETYPE="image/jpeg">
        <FLocat LOCTYPE="URL" xlink:href="http://example.org/thumb/1"/>
      </file>
    </fileGrp>
    <fileGrp USE="txt">
      <file ID="TXT_0001" USE="Page" MIMETYPE="text/plain">
        <FLocat LOCTYPE="URL" xlink:href="http://example.org/txt/1"/>
      </file>
    </fileGrp>
  </fileSec>`

const manifestStructMap = `
  <structMap TYPE="Pages">
    <div TYPE="Pages">
      <div TYPE="Page" ORDER="1">
        <fptr FILEID="IMG_0001"/>
        <fptr FILEID="TXT_0001"/>
      </div>
      <div TYPE="Page" ORDER="2">
        <fptr FILEID="IMG_0002"/>
      </div>
    </div>
  </structMap>`

func sampleManifest(structMap string) []byte {
	return []byte(manifestHead + manifestFileSec + structMap + "\n</mets>")
}

func TestParse(t *testing.T) {
	doc, err := Parse(sampleManifest(manifestStructMap), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.ObjectID != "handle/uuid:1234" {
		t.Errorf("ObjectID = %q, want %q", doc.ObjectID, "handle/uuid:1234")
	}

	if got := doc.Images.Order; !reflect.DeepEqual(got, []string{"IMG_0001", "IMG_0002"}) {
		t.Errorf("Images.Order = %v, want [IMG_0001 IMG_0002]", got)
	}
	if got := doc.Images.URLs["IMG_0002"]; got != "http://example.org/img/2" {
		t.Errorf("Images.URLs[IMG_0002] = %q", got)
	}
	if _, ok := doc.Images.URLs["THUMB_0001"]; ok {
		t.Error("thumbnail entry leaked into the page image group")
	}
	if got := doc.Texts.URLs["TXT_0001"]; got != "http://example.org/txt/1" {
		t.Errorf("Texts.URLs[TXT_0001] = %q", got)
	}
}

func TestPageEntries(t *testing.T) {
	doc, err := Parse(sampleManifest(manifestStructMap), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	pages, err := doc.PageEntries()
	if err != nil {
		t.Fatalf("PageEntries failed: %v", err)
	}

	want := []PageEntry{
		{ImageURL: "http://example.org/img/1", TextURL: "http://example.org/txt/1"},
		{ImageURL: "http://example.org/img/2"},
	}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("PageEntries = %v, want %v", pages, want)
	}
}

func TestPageEntriesMissingImage(t *testing.T) {
	structMap := `
  <structMap TYPE="Pages">
    <div TYPE="Pages">
      <div TYPE="Page" ORDER="1">
        <fptr FILEID="IMG_0001"/>
      </div>
      <div TYPE="Page" ORDER="7">
        <fptr FILEID="MISSING_ID"/>
      </div>
    </div>
  </structMap>`

	doc, err := Parse(sampleManifest(structMap), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	_, err = doc.PageEntries()
	if err == nil {
		t.Fatal("PageEntries succeeded, want error")
	}
	if !strings.Contains(err.Error(), "page 7") {
		t.Errorf("error %q does not name the page order", err)
	}
}

func TestPageEntriesNoStructMap(t *testing.T) {
	doc, err := Parse(sampleManifest(""), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	pages, err := doc.PageEntries()
	if err != nil {
		t.Fatalf("PageEntries failed: %v", err)
	}

	// Legacy mode: image group order, no text attached.
	want := []PageEntry{
		{ImageURL: "http://example.org/img/1"},
		{ImageURL: "http://example.org/img/2"},
	}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("PageEntries = %v, want %v", pages, want)
	}
}

func TestParseEmptyImageGroup(t *testing.T) {
	fileSec := `
  <fileSec>
    <fileGrp USE="img">
    </fileGrp>
    <fileGrp USE="txt">
    </fileGrp>
  </fileSec>`

	doc, err := Parse([]byte(manifestHead+fileSec+"\n</mets>"), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Images.Order) != 0 {
		t.Errorf("Images.Order = %v, want empty", doc.Images.Order)
	}
}

func TestParseStructuralErrors(t *testing.T) {
	t.Run("missing image group", func(t *testing.T) {
		fileSec := `
  <fileSec>
    <fileGrp USE="txt"></fileGrp>
  </fileSec>`
		_, err := Parse([]byte(manifestHead+fileSec+"\n</mets>"), imageMIME, textMIME)
		if err == nil || !strings.Contains(err.Error(), `fileGrp[USE="img"]`) {
			t.Errorf("err = %v, want missing img group error", err)
		}
	})

	t.Run("duplicate location record", func(t *testing.T) {
		fileSec := `
  <fileSec>
    <fileGrp USE="img">
      <file ID="IMG_0001" USE="Page" MIMETYPE="image/vnd.djvu">
        <FLocat LOCTYPE="URL" xlink:href="http://example.org/img/1"/>
        <FLocat LOCTYPE="URL" xlink:href="http://example.org/img/1b"/>
      </file>
    </fileGrp>
    <fileGrp USE="txt"></fileGrp>
  </fileSec>`
		_, err := Parse([]byte(manifestHead+fileSec+"\n</mets>"), imageMIME, textMIME)
		if err == nil || !strings.Contains(err.Error(), "IMG_0001") {
			t.Errorf("err = %v, want location count error for IMG_0001", err)
		}
	})
}

func TestRecord(t *testing.T) {
	doc, err := Parse(sampleManifest(manifestStructMap), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rec, err := doc.Record()
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	title, ok := rec.First("245")
	if !ok {
		t.Fatal("tag 245 not found in record")
	}
	if got := title["a"][0]; got != "Staré pověsti české" {
		t.Errorf("245$a = %q", got)
	}
}

func TestLanguages(t *testing.T) {
	doc, err := Parse(sampleManifest(manifestStructMap), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	langs, err := doc.Languages()
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if !reflect.DeepEqual(langs, []string{"cze", "eng"}) {
		t.Errorf("Languages = %v, want [cze eng]", langs)
	}
}

func TestMissingMetadataSection(t *testing.T) {
	// Manifest without any dmdSec at all.
	manifest := `<?xml version="1.0" encoding="UTF-8"?>
<mets xmlns="http://www.loc.gov/METS/" xmlns:xlink="http://www.w3.org/1999/xlink" OBJID="handle/uuid:1">` + manifestFileSec + `
</mets>`

	doc, err := Parse([]byte(manifest), imageMIME, textMIME)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := doc.Record(); err == nil {
		t.Error("Record succeeded without DMD_MARC section")
	}
	if _, err := doc.Languages(); err == nil {
		t.Error("Languages succeeded without DMD_DC section")
	}
}
