package testutil_test

// Mocks built on testify/mock only record calls and return configured
// values, so they are exercised through the tests of the components that
// consume them rather than tested directly here.
