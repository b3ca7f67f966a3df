package entity

import "testing"

func completeArtifact() *SiteArtifact {
	a := NewSiteArtifact()
	a.Structure = &SiteStructure{
		SiteName: "Acme",
		Pages:    []SitePage{{Key: "home", Title: "Home", Slug: "/"}},
	}
	a.SEO = &SiteSEO{SiteTitle: "Acme", SiteDescription: "A website"}
	a.Content = &SiteContent{Blocks: []ContentBlock{{PageKey: "home", SectionKey: "hero", Body: "Welcome"}}}
	return a
}

func TestIsComplete(t *testing.T) {
	if (*SiteArtifact)(nil).IsComplete() {
		t.Fatal("nil artifact is not complete")
	}
	if NewSiteArtifact().IsComplete() {
		t.Fatal("empty artifact is not complete")
	}

	a := completeArtifact()
	if !a.IsComplete() {
		t.Fatal("structure + seo + content is complete")
	}

	// design 可缺省
	a.Design = &SiteDesign{ColorScheme: ColorScheme{Primary: "#040404"}}
	if !a.IsComplete() {
		t.Fatal("design does not change completeness")
	}

	missingSEO := completeArtifact()
	missingSEO.SEO = nil
	if missingSEO.IsComplete() {
		t.Fatal("artifact without seo is incomplete")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := completeArtifact()
	clone := a.Clone()
	clone.Structure.SiteName = "Changed"
	clone.Content.Blocks[0].Body = "Changed"

	if a.Structure.SiteName != "Acme" {
		t.Fatal("clone must not share structure")
	}
	if a.Content.Blocks[0].Body != "Welcome" {
		t.Fatal("clone must not share content blocks")
	}
	if a.SchemaVersion != clone.SchemaVersion {
		t.Fatal("schema version must carry over")
	}
}

func TestCloneNil(t *testing.T) {
	if (*SiteArtifact)(nil).Clone() != nil {
		t.Fatal("nil clones to nil")
	}
}
