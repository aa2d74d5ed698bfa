// admin.go - privacy-conscious admin dashboard and visitor tracking
package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"
)

const adminCookie = "admin_token"

type adminAuth struct {
	token    string
	salt     []byte
	username string
	password string
}

func newAdminAuth(username, password string) *adminAuth {
	a := &adminAuth{
		token:    hex.EncodeToString(randomBytes(32)),
		salt:     randomBytes(32), // key for IP hashing
		username: username,
		password: password,
	}

	// Default credentials only outside release mode.
	if gin.Mode() != gin.ReleaseMode {
		if a.username == "" {
			a.username = "admin"
			log.Println("WARNING: Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
		if a.password == "" {
			a.password = "admin123"
			log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
		log.Printf("Admin token (dev only): %s", a.token)
	}
	log.Printf("Admin access available at: /admin/login")
	return a
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("Failed to generate random bytes:", err)
	}
	return b
}

// hashIP returns a keyed hash of ip that is stable for the process lifetime.
func (a *adminAuth) hashIP(ip string) string {
	h, err := blake2b.New256(a.salt)
	if err != nil {
		// Only possible with a key longer than 64 bytes.
		panic(err)
	}
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (a *adminAuth) checkCredentials(username, password string) bool {
	if a.username == "" || a.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Privacy-conscious visitor tracking middleware
func (s *server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/admin/") ||
			strings.HasPrefix(path, "/favicon") ||
			strings.HasPrefix(path, "/privacy") ||
			strings.HasPrefix(path, "/contact") ||
			strings.HasPrefix(path, "/typewriter/") {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashed := s.admin.hashIP(c.ClientIP())
		ua := c.GetHeader("User-Agent")
		go func() {
			if err := s.store.RecordVisit(hashed, ua, path, time.Now()); err != nil {
				log.Printf("Error recording visitor: %v", err)
			}
		}()
		c.Next()
	}
}

// Setup all admin routes
func (s *server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":  "Privacy Policy",
			"notice": PrivacyNotice,
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if s.admin.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", false, true)
			log.Printf("Admin login successful from %s", s.admin.hashIP(c.ClientIP()))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		log.Printf("Failed admin login attempt from %s", s.admin.hashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.admin.middleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(time.Now())
		if err != nil {
			log.Printf("Error loading admin stats: %v", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":    stats,
			"sessions": s.contacts.Len(),
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.store.RecentVisitors(200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	admin.GET("/deliveries", func(c *gin.Context) {
		deliveries, err := s.store.RecentDeliveries(200, c.Query("outcome"))
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load deliveries",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-deliveries.html", gin.H{
			"deliveries": deliveries,
		})
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := s.store.CleanupVisits(visitorRetention, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		log.Printf("Admin stats exported by %s", s.admin.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
