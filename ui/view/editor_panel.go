package view

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/mystic-booth/assets"
	"github.com/soocke/mystic-booth/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// EditorHandlers are invoked from the editor widgets.
type EditorHandlers struct {
	OnCaption       func(caption string)
	OnBackground    func(hex string)
	OnAddSticker    func(id string)
	OnUploadSticker func(path string)
	OnRemoveSticker func(index int)
	OnSave          func()
	OnNewSession    func()
}

// EditorPanel shows the composed strip and its decoration form.
type EditorPanel interface {
	Build(parent *FrameWidget, startRow int, caption, background string) (endRow int)
	SetEditable(enabled bool)
	ShowStrip(png []byte)
	SetStatus(text string)
	SetStickers(names []string)
}

type editorPanel struct {
	h      EditorHandlers
	logger *slog.Logger

	stripLbl   *LabelWidget
	stripPhoto *Img
	statusLbl  *LabelWidget
	caption    *TextWidget
	background *TComboboxWidget
	customBg   *TextWidget
	pack       *TComboboxWidget
	placed     *TComboboxWidget
	buttons    []*ButtonWidget
}

func NewEditorPanel(h EditorHandlers, logger *slog.Logger) EditorPanel {
	return &editorPanel{h: h, logger: logger}
}

func (v *editorPanel) Build(parent *FrameWidget, startRow int, caption, background string) (row int) {
	row = startRow
	v.stripPhoto = NewPhoto(Data(placeholder(150, 470)))
	v.stripLbl = Label(Image(v.stripPhoto), Borderwidth(1), Relief("sunken"))
	Grid(v.stripLbl, In(parent), Row(row), Column(0), Columnspan(2), Padx("0.4m"), Pady("0.4m"))
	row++

	lbl := Label(Txt("Caption"), Anchor("w"))
	Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	v.caption = Text(Height(1), Width(26))
	Grid(v.caption, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.caption.Delete("1.0", END)
	v.caption.Insert("1.0", caption)
	row++

	lbl = Label(Txt("Background"), Anchor("w"))
	Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	presets := model.BackgroundPresets
	v.background = TCombobox(Values(presets), Width(10))
	Grid(v.background, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.background.Current(presetIndex(presets, background))
	Bind(v.background, "<<ComboboxSelected>>", Command(func() {
		idx, ok := v.selected(v.background, len(presets))
		if ok && v.h.OnBackground != nil {
			v.h.OnBackground(presets[idx])
		}
	}))
	row++

	lbl = Label(Txt("Custom color"), Anchor("w"))
	Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	v.customBg = Text(Height(1), Width(10))
	Grid(v.customBg, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.customBg.Insert("1.0", background)
	row++

	add := func(label string, fn func()) {
		b := Button(Txt(label), Command(fn))
		Grid(b, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		v.buttons = append(v.buttons, b)
		row++
	}
	add("Apply Color", func() {
		if v.h.OnBackground != nil {
			v.h.OnBackground(v.text(v.customBg))
		}
	})
	add("Apply Caption", func() {
		if v.h.OnCaption != nil {
			v.h.OnCaption(v.text(v.caption))
		}
	})

	ids := make([]string, len(assets.StickerPack))
	for i, st := range assets.StickerPack {
		ids[i] = st.ID
	}
	lbl = Label(Txt("Sticker"), Anchor("w"))
	Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	v.pack = TCombobox(Values(ids), Width(10))
	Grid(v.pack, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.pack.Current(0)
	row++
	add("Add Sticker", func() {
		idx, ok := v.selected(v.pack, len(ids))
		if ok && v.h.OnAddSticker != nil {
			v.h.OnAddSticker(ids[idx])
		}
	})
	add("Upload Sticker…", func() {
		files := GetOpenFile(Title("Choose a sticker image"))
		if len(files) > 0 && files[0] != "" && v.h.OnUploadSticker != nil {
			v.h.OnUploadSticker(files[0])
		}
	})

	lbl = Label(Txt("Placed"), Anchor("w"))
	Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	v.placed = TCombobox(Values([]string{}), Width(10))
	Grid(v.placed, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	row++
	add("Remove Sticker", func() {
		idx, err := strconv.Atoi(v.placed.Current(nil))
		if err == nil && idx >= 0 && v.h.OnRemoveSticker != nil {
			v.h.OnRemoveSticker(idx)
		}
	})
	add("Save Strip", func() {
		if v.h.OnSave != nil {
			v.h.OnSave()
		}
	})
	add("New Session", func() {
		if v.h.OnNewSession != nil {
			v.h.OnNewSession()
		}
	})

	v.statusLbl = Label(Txt(""), Anchor("w"))
	Grid(v.statusLbl, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	row++
	v.SetEditable(false)
	return row
}

func (v *editorPanel) selected(w *TComboboxWidget, n int) (int, bool) {
	idx, err := strconv.Atoi(w.Current(nil))
	if err != nil || idx < 0 || idx >= n {
		if v.logger != nil {
			v.logger.Error("combobox selection parse error", "error", err)
		}
		return 0, false
	}
	return idx, true
}

func (v *editorPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, t := range []*TextWidget{v.caption, v.customBg} {
		if t != nil {
			t.Configure(State(state))
		}
	}
	combo := "disabled"
	if enabled {
		combo = "readonly"
	}
	for _, c := range []*TComboboxWidget{v.background, v.pack, v.placed} {
		if c != nil {
			c.Configure(State(combo))
		}
	}
	for _, b := range v.buttons {
		b.Configure(State(state))
	}
}

func (v *editorPanel) ShowStrip(png []byte) {
	if v.stripLbl == nil || len(png) == 0 {
		return
	}
	v.stripPhoto = swapPhoto(v.stripLbl, v.stripPhoto, png)
}

func (v *editorPanel) SetStickers(names []string) {
	if v.placed == nil {
		return
	}
	labels := make([]string, len(names))
	for i, n := range names {
		labels[i] = strconv.Itoa(i+1) + ". " + n
	}
	v.placed.Configure(Values(labels))
	if len(labels) > 0 {
		v.placed.Current(len(labels) - 1)
	}
}

func (v *editorPanel) SetStatus(text string) {
	if v.statusLbl != nil {
		v.statusLbl.Configure(Txt(text))
	}
}

func (v *editorPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

func presetIndex(presets []string, hex string) int {
	for i, p := range presets {
		if strings.EqualFold(p, hex) {
			return i
		}
	}
	return 0
}
