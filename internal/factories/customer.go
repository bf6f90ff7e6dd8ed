package factories

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/popuptinybar/tinybar/internal/models"
)

// CustomerFactory fabricates contact details that pass the quote service's
// contact checks.
type CustomerFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

func NewCustomerFactory(seed int64) *CustomerFactory {
	return &CustomerFactory{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Mexico City numbers: 55 followed by eight digits.
func (cf *CustomerFactory) phone() string {
	return fmt.Sprintf("+52 55 %04d %04d", cf.rng.Intn(10000), cf.rng.Intn(10000))
}

func (cf *CustomerFactory) email(first, last string) string {
	local := strings.ToLower(first + "." + last)
	local = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r == '.' {
			return r
		}
		return -1
	}, local)
	local = strings.Trim(strings.ReplaceAll(local, "..", "."), ".")
	if local == "" {
		local = "cliente"
	}
	return fmt.Sprintf("%s%d@%s", local, cf.rng.Intn(1000), cf.fake.Internet().FreeEmailDomain())
}

func (cf *CustomerFactory) CreateCustomer() *models.Customer {
	first := cf.fake.Person().FirstName()
	last := cf.fake.Person().LastName()
	return &models.Customer{
		Name:  first + " " + last,
		Email: cf.email(first, last),
		Phone: cf.phone(),
	}
}
