package models

import "testing"

func TestKindForFilename(t *testing.T) {
	tests := []struct {
		name string
		file string
		want Kind
	}{
		{
			name: "JPEG image",
			file: "beach.jpg",
			want: KindImage,
		},
		{
			name: "PNG image",
			file: "shot.PNG",
			want: KindImage,
		},
		{
			name: "MP4 video",
			file: "clip.mp4",
			want: KindVideo,
		},
		{
			name: "MOV video uppercase",
			file: "clip.MOV",
			want: KindVideo,
		},
		{
			name: "no extension defaults to image",
			file: "snapshot",
			want: KindImage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindForFilename(tt.file); got != tt.want {
				t.Errorf("KindForFilename(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestObjectKeys(t *testing.T) {
	if got := FullKey(KindImage, "beach.jpg"); got != "images/full/beach.jpg" {
		t.Errorf("FullKey image = %q", got)
	}
	if got := ThumbKey(KindImage, "beach.jpg"); got != "images/thumb/beach.jpg" {
		t.Errorf("ThumbKey image = %q", got)
	}
	if got := FullKey(KindVideo, "clip.mp4"); got != "videos/full/clip.mp4" {
		t.Errorf("FullKey video = %q", got)
	}
	if got := ThumbKey(KindVideo, "clip.mp4"); got != "videos/thumb/clip.mp4.jpg" {
		t.Errorf("ThumbKey video = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("image"); !ok || k != KindImage {
		t.Error("image should parse")
	}
	if k, ok := ParseKind("video"); !ok || k != KindVideo {
		t.Error("video should parse")
	}
	if _, ok := ParseKind("audio"); ok {
		t.Error("audio should not parse")
	}
}
