package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Authentication", func() {
	var (
		fx  *fixture
		mux *http.ServeMux
	)

	BeforeEach(func() {
		fx = newFixture()
		mux = fx.handler.Routes()
	})

	login := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("username", username)
		form.Set("password", password)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	getWithCookies := func(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	Describe("login", func() {
		It("should establish a session with valid credentials", func() {
			rec := login(testUsername, testPassword)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/home"))
			Expect(rec.Result().Cookies()).NotTo(BeEmpty())
		})

		It("should trim surrounding whitespace from the username", func() {
			rec := login("  "+testUsername+"  ", testPassword)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/home"))
		})

		It("should reject a wrong password", func() {
			rec := login(testUsername, "wrong-password")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Invalid username or password"))
			Expect(rec.Result().Cookies()).To(BeEmpty())
		})

		It("should answer identically for a wrong password and an unknown user", func() {
			wrongPassword := login(testUsername, "wrong-password")
			unknownUser := login("no-such-user", "wrong-password")

			Expect(wrongPassword.Code).To(Equal(unknownUser.Code))
			Expect(wrongPassword.Body.Bytes()).To(Equal(unknownUser.Body.Bytes()))
		})

		It("should reject empty credentials", func() {
			rec := login("", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Invalid username or password"))
		})

		It("should reject oversized credentials", func() {
			rec := login(strings.Repeat("a", 101), testPassword)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Invalid username or password"))
		})
	})

	Describe("session gate", func() {
		It("should redirect unauthenticated dashboard requests to login", func() {
			for _, path := range []string{"/home", "/bevaegelse", "/temperatur_fugt", "/door_control"} {
				rec := getWithCookies(path, nil)
				Expect(rec.Code).To(Equal(http.StatusSeeOther), path)
				Expect(rec.Header().Get("Location")).To(Equal("/login"), path)
			}
		})

		It("should serve dashboard pages once logged in", func() {
			cookies := login(testUsername, testPassword).Result().Cookies()

			for _, path := range []string{"/home", "/bevaegelse", "/temperatur_fugt", "/door_control"} {
				rec := getWithCookies(path, cookies)
				Expect(rec.Code).To(Equal(http.StatusOK), path)
				Expect(rec.Body.String()).To(ContainSubstring(testUsername), path)
			}
		})

		It("should redirect the index by session state", func() {
			rec := getWithCookies("/", nil)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/login"))

			cookies := login(testUsername, testPassword).Result().Cookies()
			rec = getWithCookies("/", cookies)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/home"))
		})

		It("should redirect a logged-in user away from the login form", func() {
			cookies := login(testUsername, testPassword).Result().Cookies()
			rec := getWithCookies("/login", cookies)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/home"))
		})
	})

	Describe("logout", func() {
		It("should invalidate the session", func() {
			cookies := login(testUsername, testPassword).Result().Cookies()

			rec := getWithCookies("/logout", cookies)
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/login"))

			// The expired cookie replaces the old one.
			rec = getWithCookies("/home", rec.Result().Cookies())
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/login"))
		})
	})

	Describe("login page", func() {
		It("should serve the form without an error line", func() {
			rec := getWithCookies("/login", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`name="username"`))
			Expect(rec.Body.String()).NotTo(ContainSubstring("Invalid username or password"))
		})
	})
})

var _ = Describe("Dashboard views", func() {
	var (
		fx  *fixture
		mux *http.ServeMux
		ctx context.Context
	)

	BeforeEach(func() {
		fx = newFixture()
		mux = fx.handler.Routes()
		ctx = context.Background()
	})

	authedGet := func(path string) *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("username", testUsername)
		form.Set("password", testPassword)

		loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		loginRec := httptest.NewRecorder()
		mux.ServeHTTP(loginRec, loginReq)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range loginRec.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	It("should decorate readings with window advisories", func() {
		Expect(fx.readings.Insert(ctx, 26.0, 45.0, "2026-08-29 12:00:00")).To(Succeed())
		Expect(fx.readings.Insert(ctx, 20.0, 50.0, "2026-08-29 12:05:00")).To(Succeed())

		rec := authedGet("/temperatur_fugt")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Temp 26.0°C &gt; 25.0°C"))
		Expect(rec.Body.String()).To(ContainSubstring("normal values"))
	})

	It("should show motion events", func() {
		Expect(fx.motion.Insert(ctx, true, "2026-08-29 12:00:00")).To(Succeed())

		rec := authedGet("/bevaegelse")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Detected"))
	})

	It("should show the unknown door state before any log entry", func() {
		rec := authedGet("/door_control")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Unknown"))
	})

	It("should show the last observed door state", func() {
		Expect(fx.door.LogState(ctx, true, "2026-08-29 12:00:00")).To(Succeed())

		rec := authedGet("/door_control")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`class="open"`))
	})

	It("should render home without any readings", func() {
		rec := authedGet("/home")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("No sensor readings yet"))
	})
})

var _ = Describe("Health", func() {
	It("should answer ok without a session", func() {
		fx := newFixture()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		fx.handler.Routes().ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})
})
