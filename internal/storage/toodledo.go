package storage

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/pstuifzand/toodledo-to-todoist/internal/model"
)

// Toodledo backups look like this; only the fields below are read, everything
// else inside <item> is ignored:
//
//   <xml>
//     <item>
//       <id>1234</id>
//       <parent>0</parent>
//       <title>Buy milk</title>
//       <tag>errand, shop</tag>
//       <folder>Home</folder>
//       <duedate>2020-01-02</duedate>
//       <completed>0000-00-00</completed>
//       <repeat>None</repeat>
//       <note><![CDATA[two
//   lines]]></note>
//     </item>
//   </xml>

// toodledoItem has no XMLName so that <item> is decoded whatever its case
type toodledoItem struct {
	ID        string `xml:"id"`
	Parent    string `xml:"parent"`
	Title     string `xml:"title"`
	Tag       string `xml:"tag"`
	Folder    string `xml:"folder"`
	DueDate   string `xml:"duedate"`
	Completed string `xml:"completed"`
	Repeat    string `xml:"repeat"`
	Note      string `xml:"note"`
}

type toodledoBackup struct {
	XMLName xml.Name       `xml:"xml"`
	Items   []toodledoItem `xml:"item"`
}

// DecodeToodledo reads every <item> of a Toodledo XML backup, in document order
func DecodeToodledo(r io.Reader) ([]model.Record, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charsetReader

	var records []model.Record
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse backup: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, "item") {
			continue
		}

		var item toodledoItem
		if err := decoder.DecodeElement(&item, &start); err != nil {
			return nil, fmt.Errorf("failed to decode item %d: %w", len(records)+1, err)
		}
		records = append(records, item.record())
	}

	return records, nil
}

// EncodeToodledo writes records back out in the Toodledo backup layout
func EncodeToodledo(w io.Writer, records []model.Record) error {
	writer := bufio.NewWriter(w)

	if _, err := writer.WriteString(xml.Header); err != nil {
		return err
	}

	backup := toodledoBackup{Items: make([]toodledoItem, 0, len(records))}
	for _, rec := range records {
		backup.Items = append(backup.Items, itemFromRecord(rec))
	}

	encoder := xml.NewEncoder(writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if _, err := writer.WriteString("\n"); err != nil {
		return err
	}

	return writer.Flush()
}

// LoadToodledoFile reads the records of a backup file
func LoadToodledoFile(filePath string) ([]model.Record, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	return DecodeToodledo(f)
}

// SaveToodledoFile writes records to filePath as a backup file
func SaveToodledoFile(filePath string, records []model.Record) error {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := EncodeToodledo(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (it toodledoItem) record() model.Record {
	return model.Record{
		ID:        it.ID,
		Title:     it.Title,
		Folder:    it.Folder,
		Parent:    it.Parent,
		Completed: it.Completed,
		DueDate:   it.DueDate,
		Note:      it.Note,
		Repeat:    it.Repeat,
		Tag:       it.Tag,
	}
}

func itemFromRecord(rec model.Record) toodledoItem {
	return toodledoItem{
		ID:        rec.ID,
		Parent:    rec.Parent,
		Title:     rec.Title,
		Tag:       rec.Tag,
		Folder:    rec.Folder,
		DueDate:   rec.DueDate,
		Completed: rec.Completed,
		Repeat:    rec.Repeat,
		Note:      rec.Note,
	}
}

// charsetReader handles the non-UTF-8 encodings older backups were written in
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "latin1", "latin-1", "us-ascii", "ascii":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset: %s", label)
}
